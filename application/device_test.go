package application

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeviceList(t *testing.T) {
	stored := []MonitoringDevice{{ID: "1", Name: "Kitchen"}, {ID: "2", Name: "Office"}}

	mStore := &MockDeviceStore{}
	mStore.On("Load").Return(stored, nil).Once()

	list, err := NewDeviceList(mStore)
	require.NoError(t, err)
	assert.Equal(t, stored, list.All())

	mStore.AssertExpectations(t)
}

func TestNewDeviceList_LoadError(t *testing.T) {
	mStore := &MockDeviceStore{}
	mStore.On("Load").Return(nil, fmt.Errorf("%w: bad json", ErrCorruptDeviceStore)).Once()

	list, err := NewDeviceList(mStore)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCorruptDeviceStore)
	assert.Nil(t, list)

	mStore.AssertExpectations(t)
}

func TestNewDeviceList_NoStore(t *testing.T) {
	list, err := NewDeviceList(nil)
	require.Error(t, err)
	assert.Nil(t, list)
}

func TestDeviceList_Add(t *testing.T) {
	mStore := &MockDeviceStore{}
	mStore.On("Load").Return([]MonitoringDevice{{ID: "1", Name: "Kitchen"}}, nil).Once()

	list, err := NewDeviceList(mStore)
	require.NoError(t, err)

	expected := []MonitoringDevice{{ID: "1", Name: "Kitchen"}, {ID: "1", Name: "Kitchen"}}
	mStore.On("Save", expected).Return(nil).Once()

	// duplicates are allowed
	err = list.Add(MonitoringDevice{ID: "1", Name: "Kitchen"})
	require.NoError(t, err)
	assert.Equal(t, expected, list.All())

	mStore.AssertExpectations(t)
	mStore.AssertNumberOfCalls(t, "Save", 1)
}

func TestDeviceList_Add_SaveError(t *testing.T) {
	mStore := &MockDeviceStore{}
	mStore.On("Load").Return([]MonitoringDevice{}, nil).Once()

	list, err := NewDeviceList(mStore)
	require.NoError(t, err)

	mStore.On("Save", []MonitoringDevice{{ID: "1", Name: "Kitchen"}}).Return(fmt.Errorf("disk full")).Once()

	err = list.Add(MonitoringDevice{ID: "1", Name: "Kitchen"})
	require.Error(t, err)
	assert.Empty(t, list.All())

	mStore.AssertExpectations(t)
}

func TestDeviceList_Remove(t *testing.T) {
	kitchen := MonitoringDevice{ID: "1", Name: "Kitchen"}
	office := MonitoringDevice{ID: "2", Name: "Office"}

	mStore := &MockDeviceStore{}
	mStore.On("Load").Return([]MonitoringDevice{kitchen, office, kitchen}, nil).Once()

	list, err := NewDeviceList(mStore)
	require.NoError(t, err)

	mStore.On("Save", []MonitoringDevice{office, kitchen}).Return(nil).Once()

	removed, err := list.Remove(kitchen)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, []MonitoringDevice{office, kitchen}, list.All())

	mStore.AssertExpectations(t)
	mStore.AssertNumberOfCalls(t, "Save", 1)
}

func TestDeviceList_Remove_NoMatch(t *testing.T) {
	mStore := &MockDeviceStore{}
	mStore.On("Load").Return([]MonitoringDevice{{ID: "1", Name: "Kitchen"}}, nil).Once()

	list, err := NewDeviceList(mStore)
	require.NoError(t, err)

	removed, err := list.Remove(MonitoringDevice{ID: "1", Name: "Office"})
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Len(t, list.All(), 1)

	mStore.AssertExpectations(t)
	mStore.AssertNumberOfCalls(t, "Save", 0)
}
