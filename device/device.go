// Package device runs glue kernels on an OCCA device.
package device

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/notargets/DGGlue/utils"
	"github.com/notargets/gocca"
)

var ErrNoDevice = errors.New("no OCCA backend available")

// Backends are tried in order by CreateDevice
var Backends = []string{
	`{"mode": "OpenMP"}`,
	`{"mode": "CUDA", "device_id": 0}`,
	`{"mode": "Serial"}`,
}

// CreateDevice returns the first backend that initializes, preferring
// parallel ones
func CreateDevice(logger hclog.Logger) (*gocca.OCCADevice, error) {
	logger = utils.OrNull(logger)
	var result error
	for _, props := range Backends {
		device, err := gocca.NewDevice(props)
		if err == nil {
			logger.Debug("created device", "mode", device.Mode())
			return device, nil
		}
		result = multierror.Append(result, fmt.Errorf("%s: %w", props, err))
	}
	return nil, fmt.Errorf("%w: %v", ErrNoDevice, result)
}

// buildKernel compiles source, adding -O3 for OpenMP which does not get it
// by default
func buildKernel(dev *gocca.OCCADevice, source, name string) (*gocca.OCCAKernel, error) {
	var (
		kernel *gocca.OCCAKernel
		err    error
	)
	if dev.Mode() == "OpenMP" {
		props := gocca.JsonParse(`{"compiler_flags": "-O3"}`)
		defer props.Free()
		kernel, err = dev.BuildKernelFromString(source, name, props)
	} else {
		kernel, err = dev.BuildKernelFromString(source, name, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build kernel %s: %w", name, err)
	}
	if kernel == nil {
		return nil, fmt.Errorf("kernel build returned nil for %s", name)
	}
	return kernel, nil
}
