package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver
)

func init() {
	rootCmd.AddCommand(portsCmd)
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI output ports",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer midi.CloseDriver()
		ch := make(chan []drivers.Out, 1)
		go func() {
			ch <- midi.GetOutPorts()
		}()
		select {
		case outs := <-ch:
			if len(outs) == 0 {
				fmt.Println("no MIDI output ports")
			}
			for i, p := range outs {
				fmt.Printf("%d: %s\n", i, p.String())
			}
			return nil
		case <-time.After(3 * time.Second):
			return fmt.Errorf("timed out listing MIDI ports")
		}
	},
}
