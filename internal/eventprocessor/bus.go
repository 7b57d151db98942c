// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package eventprocessor

import (
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Bus pairs the publisher and subscriber of one transport.
type Bus struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
	transport  string
}

// NewBus opens the transport selected by cfg.Transport.
func NewBus(cfg Config, logger watermill.LoggerAdapter) (*Bus, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	switch cfg.Transport {
	case TransportNATS:
		pub, err := newNATSPublisher(cfg, logger)
		if err != nil {
			return nil, err
		}
		sub, err := newNATSSubscriber(cfg, logger)
		if err != nil {
			_ = pub.Close()
			return nil, err
		}
		return &Bus{Publisher: pub, Subscriber: sub, transport: TransportNATS}, nil
	default:
		ch := gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: cfg.OutputBuffer,
		}, logger)
		return &Bus{Publisher: ch, Subscriber: ch, transport: TransportGoChannel}, nil
	}
}

// Transport returns the name of the transport in use.
func (b *Bus) Transport() string {
	return b.transport
}

// Close closes both sides of the bus.
func (b *Bus) Close() error {
	var errs []error
	if err := b.Publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close publisher: %w", err))
	}
	// The gochannel transport uses one value for both sides.
	if b.transport != TransportGoChannel {
		if err := b.Subscriber.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close subscriber: %w", err))
		}
	}
	return errors.Join(errs...)
}
