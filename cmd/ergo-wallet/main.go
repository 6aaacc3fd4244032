package main

import "github.com/AlexZinkM/ergo-wallet/cmd/ergo-wallet/cmd"

// @title        Ergo Wallet API
// @version      1.0
// @description  Local API driving ErgoPay, ErgoAuth and cold signing sessions.
// @BasePath     /
func main() {
	cmd.Execute()
}
