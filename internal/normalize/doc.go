// Package normalize converts raw external-process output into structured
// success/failure results for the calling agent.
//
// The external tool's batch protocol does not reliably signal failure through
// its exit code: a mis-ordered or incomplete action list exits zero while
// doing nothing. The normalizer therefore requires an application-defined
// sentinel marker in stdout before declaring success, and classifies a clean
// exit without the marker as a silent failure.
//
// Known toolkit noise on stderr (Gtk, Pango, Fontconfig, dbus chatter) is
// stripped before any error text reaches a result, so agents only ever see
// signal.
package normalize
