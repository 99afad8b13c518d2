// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

func TestNullDeviceHandle(t *testing.T) {
	var handle DeviceHandle = NullDeviceHandle{}

	if handle.Device() != nil {
		t.Error("NullDeviceHandle.Device() should return nil")
	}
	if handle.Queue() != nil {
		t.Error("NullDeviceHandle.Queue() should return nil")
	}
	if handle.Adapter() != nil {
		t.Error("NullDeviceHandle.Adapter() should return nil")
	}
	if handle.SurfaceFormat() != gputypes.TextureFormatUndefined {
		t.Error("NullDeviceHandle.SurfaceFormat() should return Undefined")
	}
	if info := handle.AdapterInfo(); info.Type != gpucontext.AdapterTypeUnknown {
		t.Errorf("NullDeviceHandle.AdapterInfo().Type = %v, want Unknown", info.Type)
	}
}

func TestBox(t *testing.T) {
	tests := []struct {
		name  string
		box   Box
		w, h  float32
		empty bool
	}{
		{"from size", BoxFromSize(30, 20), 30, 20, false},
		{"offset", Box{X1: 10, Y1: 5, X2: 20, Y2: 25}, 10, 20, false},
		{"zero", Box{}, 0, 0, true},
		{"inverted", Box{X1: 5, X2: 1, Y2: 3}, -4, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.box.Width(); got != tt.w {
				t.Errorf("Width() = %v, want %v", got, tt.w)
			}
			if got := tt.box.Height(); got != tt.h {
				t.Errorf("Height() = %v, want %v", got, tt.h)
			}
			if got := tt.box.IsEmpty(); got != tt.empty {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.empty)
			}
		})
	}
}
