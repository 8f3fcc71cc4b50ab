package session

import (
	"context"
	"fmt"

	"github.com/shine-lab/orchestration-core/internal/apperr"
	"github.com/shine-lab/orchestration-core/internal/models"
	"github.com/shine-lab/orchestration-core/internal/store"
)

// DeviceStore implements §4.4's get_all/get/apply over the persistent
// store. Callers are responsible for invoking these only from within the
// owning session's Executor so mutations serialize per session.
type DeviceStore struct {
	store *store.Store
}

// NewDeviceStore builds a DeviceStore backed by st.
func NewDeviceStore(st *store.Store) *DeviceStore {
	return &DeviceStore{store: st}
}

// GetAll returns a snapshot of every device for a session.
func (d *DeviceStore) GetAll(ctx context.Context, sessionID string) ([]models.Device, error) {
	return d.store.GetDevices(ctx, sessionID)
}

// Get returns a single interaction value, or (nil, false) if the device or
// interaction doesn't exist — the "not found" sentinel of §4.4.
func (d *DeviceStore) Get(ctx context.Context, sessionID, deviceID, interactionName string) (interface{}, bool, error) {
	dev, err := d.store.GetDevice(ctx, sessionID, deviceID)
	if appErr, ok := apperr.As(err); ok && appErr.Kind == apperr.KindNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("devicestore: get: %w", err)
	}
	interaction := dev.Find(interactionName)
	if interaction == nil {
		return nil, false, nil
	}
	return interaction.Value, true, nil
}

// Apply overwrites one interaction's value, creating it if the device has
// none with that name yet (needed for stateless-action injection targets
// that later become persisted via a rule action, §4.4/§4.5). StatelessAction
// interactions are the one case callers must NOT route through Apply: their
// value is never persisted (§4.5), so the rule engine evaluates them from an
// augmented in-memory snapshot instead.
func (d *DeviceStore) Apply(ctx context.Context, sessionID, deviceID, interactionName string, value interface{}) error {
	dev, err := d.store.GetDevice(ctx, sessionID, deviceID)
	if err != nil {
		return fmt.Errorf("devicestore: apply: %w", err)
	}
	if interaction := dev.Find(interactionName); interaction != nil {
		interaction.Value = value
	} else {
		dev.Interactions = append(dev.Interactions, models.Interaction{
			Name:  interactionName,
			Type:  models.InteractionGeneric,
			Value: value,
		})
	}
	if err := d.store.SaveDevice(ctx, dev); err != nil {
		return fmt.Errorf("devicestore: apply: %w", err)
	}
	return nil
}

// AsMap builds the map[deviceID]*Device shape the rules package's Snapshot
// expects.
func AsMap(devices []models.Device) map[string]*models.Device {
	out := make(map[string]*models.Device, len(devices))
	for i := range devices {
		out[devices[i].DeviceID] = &devices[i]
	}
	return out
}
