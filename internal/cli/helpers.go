package cli

import (
	"errors"

	"github.com/lifeio/lifeio/internal/daemon"
)

// openDaemon loads the config and wires services for a local command.
var openDaemon = daemon.New

func requireUser() (string, error) {
	if userID == "" {
		return "", errors.New("--user (or LIFEIO_USER) is required")
	}
	return userID, nil
}
