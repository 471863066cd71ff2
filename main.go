package main

import (
	"os"

	"pattoo-agent-setup/cmd" // Import the cmd package which contains the CLI commands and execution logic
)

// main is the program entry point.
// It delegates to cmd.Execute() which parses the command line, runs the
// selected installation steps and returns the process exit code.
//
// pattoo-agent-setup provisions the pattoo linux agent on a host:
//   - Writes pattoo.yaml and pattoo_agent.yaml into $PATTOO_CONFIGDIR (default /etc/pattoo)
//   - Creates a virtual environment in the pattoo user's home and installs the
//     checkout's requirements.txt into it
//   - Renders the agent's systemd unit templates, then enables and starts them
//
// The binary is expected to live in <checkout>/setup, next to the unit
// templates in setup/systemd/system.
func main() {
	os.Exit(cmd.Execute(os.Args[1:], cmd.Dependencies{}))
}
