package factory

import (
	"context"
	"errors"
	"testing"

	"NetPulse/internal/config"
	"NetPulse/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, model.Reading) error { return nil }
func (nopPublisher) Close() error                                 { return nil }

func init() {
	RegisterTransport("nop", func(context.Context, *config.Config) (model.Publisher, error) {
		return nopPublisher{}, nil
	})
	RegisterTransport("broken", func(context.Context, *config.Config) (model.Publisher, error) {
		return nil, errors.New("no route to broker")
	})
}

func TestCreatePublisher(t *testing.T) {
	cfg := config.Default()

	cfg.Transport.Type = "nop"
	pub, err := CreatePublisher(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, nopPublisher{}, pub)

	cfg.Transport.Type = "broken"
	_, err = CreatePublisher(context.Background(), cfg)
	assert.ErrorContains(t, err, "no route to broker")
}

func TestCreatePublisher_UnknownTypeListsRegistered(t *testing.T) {
	cfg := config.Default()
	cfg.Transport.Type = "kafka"

	_, err := CreatePublisher(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'kafka'")
	assert.Contains(t, err.Error(), "broken, nop")
}

func TestRegisterTransport_Duplicate(t *testing.T) {
	assert.Panics(t, func() {
		RegisterTransport("nop", func(context.Context, *config.Config) (model.Publisher, error) {
			return nopPublisher{}, nil
		})
	})
	assert.Equal(t, []string{"broken", "nop"}, Transports())
}
