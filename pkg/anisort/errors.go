package anisort

import "errors"

// ErrConfigTemplateCreated is returned by LoadConfig when no config file
// existed yet and a fresh template was written in its place. It is not a
// failure: the caller should report the template's location and exit.
var ErrConfigTemplateCreated = errors.New("config template created, fill it in and rerun")
