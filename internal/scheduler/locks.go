package scheduler

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	appconfig "github.com/techtech-dev-team/stranger-backoffice/internal/config"
)

const lockReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// RunLocker guards against overlapping runs of the same job. With redis
// configured the guard holds across replicas; otherwise an in-process
// mutex covers the single-instance deployment.
type RunLocker struct {
	client *redis.Client
	script *redis.Script

	mu   sync.Mutex
	held map[string]struct{}
}

func NewRunLocker(cfg appconfig.Config) *RunLocker {
	locker := &RunLocker{held: make(map[string]struct{})}
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr != "" {
		locker.client = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: cfg.RedisPassword,
		})
		locker.script = redis.NewScript(lockReleaseScript)
	}
	return locker
}

// TryLock acquires the job lock, returning the release token and whether
// the lock was won. A lost race means the job is already running.
func (l *RunLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if l.client != nil {
		token := uuid.NewString()
		ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return "", false, err
		}
		return token, ok, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, taken := l.held[key]; taken {
		return "", false, nil
	}
	l.held[key] = struct{}{}
	return key, true, nil
}

func (l *RunLocker) Release(ctx context.Context, key, token string) error {
	if l.client != nil {
		if key == "" || token == "" {
			return nil
		}
		return l.script.Run(ctx, l.client, []string{key}, token).Err()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}
