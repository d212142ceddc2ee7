package libvirt

import (
	"context"

	golibvirt "github.com/digitalocean/go-libvirt"
	logger "sigs.k8s.io/controller-runtime/pkg/log"
)

// NewLibVirtEmulator returns a mocked hypervisor handle for running
// the agent without a libvirtd. Migrations succeed instantly.
func NewLibVirtEmulator(ctx context.Context) *InterfaceMock {
	log := logger.FromContext(ctx, "controller", "libvirt-emulator")
	mockedInterface := &InterfaceMock{
		CloseFunc: func() error {
			log.Info("CloseFunc called")
			return nil
		},
		ConnectFunc: func() error {
			log.Info("ConnectFunc called")
			return nil
		},
		IsConnectedFunc: func() bool {
			return true
		},
		DescribeDomainFunc: func(vmID string) (string, error) {
			log.Info("DescribeDomainFunc called", "vmID", vmID)
			return "<domain type='kvm'><name>" + vmID + "</name></domain>", nil
		},
		SaveFunc: func(vmID, path string) error {
			log.Info("SaveFunc called", "vmID", vmID, "path", path)
			return nil
		},
		MigrateToURIFunc: func(vmID, destURI, migrateURI string, bandwidthMiB uint64, flags golibvirt.DomainMigrateFlags) error {
			log.Info("MigrateToURIFunc called", "vmID", vmID, "destURI", destURI, "migrateURI", migrateURI)
			return nil
		},
		SetMaxDowntimeFunc: func(vmID string, downtimeMs uint64) error {
			log.Info("SetMaxDowntimeFunc called", "vmID", vmID, "downtimeMs", downtimeMs)
			return nil
		},
		AbortJobFunc: func(vmID string) error {
			log.Info("AbortJobFunc called", "vmID", vmID)
			return nil
		},
		JobInfoFunc: func(vmID string) (*JobInfo, error) {
			return &JobInfo{Type: 3}, nil
		},
		SuspendFunc: func(vmID string) error {
			log.Info("SuspendFunc called", "vmID", vmID)
			return nil
		},
		ResumeFunc: func(vmID string) error {
			log.Info("ResumeFunc called", "vmID", vmID)
			return nil
		},
	}
	return mockedInterface
}
