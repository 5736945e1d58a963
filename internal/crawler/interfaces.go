package crawler

import (
	"context"
	"time"
)

// Fetcher fetches a URL and returns the body plus metadata.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// Hasher computes keyed digests for values that must not leave the process in clear text.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// Publisher emits records produced by a run.
type Publisher interface {
	Publish(ctx context.Context, payload any) error
}

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}
