// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extension

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/corp-demo/lambda-extensions/lambda/config"
	"github.com/corp-demo/lambda-extensions/lambda/extapi"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Run registers processor with the Extensions API named in cfg and runs
// its event loop until SHUTDOWN is processed, ctx is cancelled or
// SIGINT/SIGTERM is received. Termination by signal is not an error.
func Run(ctx context.Context, cfg *config.Config, processor extapi.Processor) error {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	return run(ctx, extapi.NewClient(cfg.RuntimeAPI, cfg.ExtensionName), processor, sig)
}

func run(ctx context.Context, client *extapi.Client, processor extapi.Processor, sig <-chan os.Signal) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	signalled := make(chan struct{})
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return extapi.Run(gctx, client, processor)
	})

	g.Go(func() error {
		select {
		case s := <-sig:
			log.WithField("signal", s.String()).Info("Received signal")
			close(signalled)
			cancel()
		case <-gctx.Done():
		}
		return nil
	})

	err := g.Wait()

	// The call in flight when the signal arrived failed with a cancellation
	// error, possibly wrapped by the SDK in its own type.
	select {
	case <-signalled:
		if err != nil {
			log.WithError(err).Debug("Event loop interrupted by signal")
		}
		return nil
	default:
	}

	return err
}
