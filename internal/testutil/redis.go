package testutil

import (
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// NewMiniRedis starts an in-process Redis server and returns a client bound to it.
// Both are closed when the test finishes.
func NewMiniRedis(t interface {
	TestingTB
	Cleanup(func())
}) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	srv, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() {
		closeAndLog(t, "redis client", client)
		srv.Close()
	})
	return srv, client
}
