package scheduler

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	notifyDest   = "org.freedesktop.Notifications"
	notifyPath   = "/org/freedesktop/Notifications"
	notifyMethod = notifyDest + ".Notify"

	urgencyCritical = byte(2)
)

// busNotify sends a critical notification through the freedesktop
// notification service on the session bus.
func busNotify(ctx context.Context, title, message string) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	defer conn.Close()

	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(urgencyCritical),
	}

	obj := conn.Object(notifyDest, dbus.ObjectPath(notifyPath))
	call := obj.CallWithContext(ctx, notifyMethod, 0,
		"reminder", // app_name
		uint32(0),  // replaces_id
		"",         // app_icon
		title,      // summary
		message,    // body
		[]string{}, // actions
		hints,      // hints
		int32(-1),  // expire_timeout: server default
	)
	if call.Err != nil {
		return fmt.Errorf("notify over dbus: %w", call.Err)
	}
	return nil
}
