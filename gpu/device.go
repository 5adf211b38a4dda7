package gpu

import (
	"fmt"

	"github.com/gogpu/wgpu"

	// Owned devices pick a backend through the hal registry.
	_ "github.com/gogpu/wgpu/hal/allbackends"

	"github.com/gogpu/picodraw"
)

// ownedDevice holds GPU resources the backend created itself. It exists
// only when no external DeviceProvider was supplied; a host application
// that already owns a device shares it through the provider instead.
type ownedDevice struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
}

// openDevice creates an instance, requests a high performance adapter
// and builds a logical device with default limits.
func openDevice() (*ownedDevice, error) {
	instance, err := wgpu.CreateInstance(&wgpu.InstanceDescriptor{
		Backends: wgpu.BackendsPrimary,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoGPU, err)
	}

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		instance.Release()
		return nil, fmt.Errorf("%w: %w", ErrNoGPU, err)
	}

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "picodraw",
	})
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("gpu: create device: %w", err)
	}

	info := adapter.Info()
	picodraw.Logger().Info("gpu adapter selected",
		"name", info.Name, "backend", info.Backend)

	return &ownedDevice{instance: instance, adapter: adapter, device: device}, nil
}

// close releases the device resources in reverse creation order.
func (d *ownedDevice) close() {
	if d.device != nil {
		d.device.Release()
		d.device = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
}
