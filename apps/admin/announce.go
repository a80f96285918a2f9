package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) announce(title, message string) error {
	sent, err := cli.notifSvc.Announce(context.Background(), title, message)
	if err != nil {
		return err
	}
	fmt.Printf("announcement sent to %d user(s)\n", sent)
	return nil
}
