package cli

import "fmt"

// PrintWelcome greets the user at startup.
func PrintWelcome() {
	fmt.Println(ansiCyan + `
     ██╗ █████╗ ██████╗ ██╗   ██╗██╗███████╗██╗  ██╗
     ██║██╔══██╗██╔══██╗██║   ██║██║██╔════╝██║  ██║
     ██║███████║██████╔╝██║   ██║██║███████╗███████║
██   ██║██╔══██║██╔══██╗╚██╗ ██╔╝██║╚════██║██╔══██║
╚█████╔╝██║  ██║██║  ██║ ╚████╔╝ ██║███████║██║  ██║
 ╚════╝ ╚═╝  ╚═╝╚═╝  ╚═╝  ╚═══╝  ╚═╝╚══════╝╚═╝  ╚═╝` + ansiReset)
	fmt.Println("At your service, sir. Type a command, or just talk to me.")
	fmt.Println()
}

// PrintGoodbye says farewell. Shell.Run skips it when the assistant's last
// reply was already a farewell.
func PrintGoodbye() {
	fmt.Println(ansiCyan + "Jarvis: Goodbye, sir." + ansiReset)
}
