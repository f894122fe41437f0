// Package terminal runs interactive shells on a PTY for dokd.
//
// A Terminal is a shell process attached to a pseudo-terminal. Text is sent
// with SendText; output is kept in a bounded backlog until Show is called
// and then mirrored to the configured writer.
//
// A Slot tracks the one terminal commands are sent to. It starts a terminal
// on first use, hands the same one back while its shell is alive, and
// forgets it when a close notification carrying its process ID arrives:
//
//	slot := terminal.NewSlot(terminal.Options{
//	    Name:  "DOK Dsc",
//	    Shell: "pwsh",
//	    Args:  []string{"-NoExit", "-File", startupScript},
//	})
//
//	sess, err := slot.Acquire()
//	if err != nil {
//	    return err
//	}
//	sess.SendText("Initialize-DOKDsc;", true)
//	sess.Show()
//
// PTYs are supported on Linux and macOS.
package terminal
