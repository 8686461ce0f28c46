package health

import "context"

// DBPinger checks warehouse storage availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}
