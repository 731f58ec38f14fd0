// Command ccnfwd runs the content-centric forwarding daemon.
package main

func main() {
	CmdCcnfwd.Execute()
}
