package services

import (
	"context"
	"robokassa/entity"
)

// Database is the append-only audit store.
type Database interface {
	WriteLogMessage(data Data) error
	SaveCallback(ctx context.Context, record *entity.CallbackRecord) error
}

type Data interface {
	DataType() string
}
