package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerContextSurvivesShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	handlerCtx := handlerContext(ctx)

	cancel()

	assert.Error(t, ctx.Err())
	assert.NoError(t, handlerCtx.Err())
	select {
	case <-handlerCtx.Done():
		t.Fatal("handler context must not be cancelled by shutdown")
	default:
	}
}

func TestWriteStartedBeforeShutdownCompletes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	handlerCtx := handlerContext(ctx)

	// A store write that honors its context, as pgx does.
	write := func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return nil
	}

	// Shutdown fires while the write is in flight.
	cancel()
	require.NoError(t, write(handlerCtx))
	require.ErrorIs(t, write(ctx), context.Canceled)
}
