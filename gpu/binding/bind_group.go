package binding

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/Carmen-Shannon/oxy-gpu/gpu/backend"
	"github.com/cogentcore/webgpu/wgpu"
)

// Group is a bind group together with the layout it was created against.
type Group struct {
	Layout    *wgpu.BindGroupLayout
	BindGroup *wgpu.BindGroup
}

// Release frees the bind group and its layout. The bound resources are not touched.
func (g Group) Release() {
	if g.BindGroup != nil {
		g.BindGroup.Release()
	}
	if g.Layout != nil {
		g.Layout.Release()
	}
}

// Descriptors translates an ordered declaration list into parallel layout and group
// descriptors. Binding indices are assigned from 0 in declaration order. The returned group
// descriptor has no Layout set. No device call is made.
//
// Parameters:
//   - label: the debug label for both descriptors
//   - descriptors: the binding declarations, in binding order
//
// Returns:
//   - *backend.BindGroupLayoutDescriptor: the layout descriptor
//   - *backend.BindGroupDescriptor: the group descriptor, missing only its layout
//   - error: an *ArityError for the first invalid declaration
func Descriptors(label string, descriptors ...Descriptor) (*backend.BindGroupLayoutDescriptor, *backend.BindGroupDescriptor, error) {
	layoutEntries := make([]backend.BindGroupLayoutEntry, len(descriptors))
	groupEntries := make([]backend.BindGroupEntry, len(descriptors))

	for i, d := range descriptors {
		if err := d.validate(i); err != nil {
			return nil, nil, err
		}
		index := uint32(i)
		layoutEntries[i] = backend.BindGroupLayoutEntry{
			BindGroupLayoutEntry: d.layoutEntry(index),
		}
		if d.Count != nil {
			layoutEntries[i].Count = *d.Count
			d.Resource.Array = true
		}
		groupEntries[i] = d.Resource.groupEntry(index)
	}

	return &backend.BindGroupLayoutDescriptor{Label: label, Entries: layoutEntries},
		&backend.BindGroupDescriptor{Label: label, Entries: groupEntries},
		nil
}

// NewGroup creates a bind group layout and a bind group from one declaration list, so the two
// always agree on indices and kinds. Every declaration is validated before the device is touched.
//
// Parameters:
//   - device: the device to create the objects on
//   - label: the debug label for both objects
//   - descriptors: the binding declarations, in binding order
//
// Returns:
//   - Group: the created layout and group
//   - error: an *ArityError, or the device's creation error
func NewGroup(device backend.Device, label string, descriptors ...Descriptor) (Group, error) {
	layoutDesc, groupDesc, err := Descriptors(label, descriptors...)
	if err != nil {
		return Group{}, err
	}

	layout, err := device.CreateBindGroupLayout(layoutDesc)
	if err != nil {
		return Group{}, fmt.Errorf("binding: failed to create layout %q: %w", label, err)
	}

	groupDesc.Layout = layout
	group, err := device.CreateBindGroup(groupDesc)
	if err != nil {
		layout.Release()
		return Group{}, fmt.Errorf("binding: failed to create bind group %q: %w", label, err)
	}

	common.Logger().Debug("binding: created bind group", "label", label, "entries", len(descriptors))
	return Group{Layout: layout, BindGroup: group}, nil
}

// NewGroupWithLayout creates a bind group against an existing layout, assigning binding
// indices from 0 in the order the resources are given. The layout must already declare
// matching kinds and array lengths in that order; a mismatch is reported by the device.
//
// Parameters:
//   - device: the device to create the group on
//   - label: the debug label for the group
//   - layout: the layout to build the group against
//   - resources: the resources to bind, in binding order
//
// Returns:
//   - *wgpu.BindGroup: the created group
//   - error: the device's creation error, if any
func NewGroupWithLayout(device backend.Device, label string, layout *wgpu.BindGroupLayout, resources ...Resource) (*wgpu.BindGroup, error) {
	entries := make([]backend.BindGroupEntry, len(resources))
	for i, r := range resources {
		entries[i] = r.groupEntry(uint32(i))
	}

	group, err := device.CreateBindGroup(&backend.BindGroupDescriptor{
		Label:   label,
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("binding: failed to create bind group %q: %w", label, err)
	}

	common.Logger().Debug("binding: created bind group with existing layout", "label", label, "entries", len(resources))
	return group, nil
}
