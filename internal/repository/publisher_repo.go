package repository

import "context"

// BlocklistPublisher writes the rendered block-list to its remote home.
type BlocklistPublisher interface {
	Publish(ctx context.Context, content []byte, message string) error
}
