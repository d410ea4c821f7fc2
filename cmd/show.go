package cmd

import (
	"fmt"
	"io"

	"grimm.is/v6watch/internal/config"
	"grimm.is/v6watch/internal/i18n"
	"grimm.is/v6watch/internal/network"
)

// RunShow prints each configured interface's state and classified addresses.
// It never changes anything.
func RunShow(w io.Writer, configFile string) error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}
	return showInterfaces(w, cfg, network.NewInspector(nil))
}

func showInterfaces(w io.Writer, cfg *config.Config, insp *network.Inspector) error {
	for _, name := range cfg.Interfaces {
		state, err := insp.LinkState(name)
		if err != nil {
			return err
		}
		Printer.Fprintf(w, i18n.MsgInterface, name, state)
		if state == network.LinkAbsent {
			continue
		}

		addrs, err := insp.ListAddresses(name)
		if err != nil {
			return err
		}
		if len(addrs) == 0 {
			Printer.Fprintf(w, i18n.MsgNoAddresses)
			continue
		}
		for _, a := range addrs {
			Printer.Fprintf(w, i18n.MsgAddress, a, describe(a, cfg.Treat128AsDeletable))
		}
	}
	return nil
}

func describe(a network.Address, treat128 bool) string {
	class := network.Classify(a).String()
	if network.IsValidForProbe(a, treat128) {
		return fmt.Sprintf("%s, probe source", class)
	}
	return class
}
