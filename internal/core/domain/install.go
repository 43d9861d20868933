package domain

import (
	"time"

	"github.com/google/uuid"
)

type InstallMethod string

const (
	InstallMethodLink InstallMethod = "link"
	InstallMethodCopy InstallMethod = "copy"
)

type InstallStatus string

const (
	InstallStatusPresent InstallStatus = "PRESENT"
	InstallStatusBroken  InstallStatus = "BROKEN"
)

// Install records the placement of a READY checkpoint under the host
// application's plugin model directory, either as a symlink to the
// checkpoint's local path or as a full copy.
type Install struct {
	ID           uuid.UUID     `json:"id"`
	CheckpointID uuid.UUID     `json:"checkpoint_id"`
	HostPath     string        `json:"host_path"`
	Method       InstallMethod `json:"method"`
	Status       InstallStatus `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func ValidateInstallMethod(method string) error {
	switch InstallMethod(method) {
	case InstallMethodLink, InstallMethodCopy, "":
		return nil
	default:
		return ErrInvalidInstallMethod
	}
}
