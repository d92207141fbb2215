package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/alecthomas/kong"

	"github.com/phonepad/phonepad/device"
)

// Backends lists the compiled-in device backends.
type Backends struct{}

func (b *Backends) Run(k *kong.Context) error {
	w := tabwriter.NewWriter(k.Stdout, 0, 4, 2, ' ', 0)
	for _, name := range device.ListBackends() {
		fmt.Fprintf(w, "%s\t%s\n", name, device.Lookup(name).Description())
	}
	return w.Flush()
}
