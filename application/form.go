package application

import (
	"strconv"
	"strings"
)

const (
	MsgDeviceIDRequired   = "Device ID is required."
	MsgDeviceIDNotNumeric = "Device ID must be a valid number."
	MsgDeviceNameRequired = "Device Name is required."
)

// AddDeviceForm is the state of the add-device form. Editing a field clears
// the previous validation message.
type AddDeviceForm struct {
	ID    string
	Name  string
	Error string
}

func (f *AddDeviceForm) SetID(v string) {
	f.ID = v
	f.Error = ""
}

func (f *AddDeviceForm) SetName(v string) {
	f.Name = v
	f.Error = ""
}

// Submit validates the form and calls onAdd once when it is accepted. On
// rejection the message is stored in f.Error and returned.
func (f *AddDeviceForm) Submit(onAdd func(MonitoringDevice)) error {
	if err := ValidateDevice(f.ID, f.Name); err != nil {
		f.Error = err.Error()
		return err
	}
	onAdd(MonitoringDevice{ID: f.ID, Name: f.Name})
	return nil
}

// ValidateDevice checks, in order: id present, id numeric, name present.
func ValidateDevice(id, name string) error {
	switch {
	case strings.TrimSpace(id) == "":
		return &ValidationError{Message: MsgDeviceIDRequired}
	case !isNumeric(id):
		return &ValidationError{Message: MsgDeviceIDNotNumeric}
	case strings.TrimSpace(name) == "":
		return &ValidationError{Message: MsgDeviceNameRequired}
	}
	return nil
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	return err == nil
}
