package redis

import (
	"context"
	"io"
)

// Shutdown returns a shutdown hook that closes the client.
// Register it after the queue's own hook so in-flight history writes finish first.
//
// Example:
//
//	jobq.Run(
//	    jobq.WithShutdownHook(q.Shutdown()),
//	    jobq.WithShutdownHook(redis.Shutdown(client)),
//	)
func Shutdown(client io.Closer) func(context.Context) error {
	return func(context.Context) error {
		if client == nil {
			return nil
		}
		return client.Close()
	}
}
