package systemd

import (
	"context"

	logger "sigs.k8s.io/controller-runtime/pkg/log"
)

func NewSystemdEmulator(ctx context.Context) *InterfaceMock {
	log := logger.FromContext(ctx, "controller", "systemd-emulator")
	mockedInterface := &InterfaceMock{
		CloseFunc: func() {
			log.Info("CloseFunc called")
		},
		IsConnectedFunc: func() bool {
			return true
		},
		HoldShutdownFunc: func(ctx context.Context, drainer Drainer) error {
			log.Info("HoldShutdownFunc called")
			return nil
		},
		ReleaseShutdownFunc: func() error {
			log.Info("ReleaseShutdownFunc called")
			return nil
		},
	}
	return mockedInterface
}
