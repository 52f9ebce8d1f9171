// Command msq converts, renders, plays and serves step sequencer songs.
package main

func main() {
	Execute()
}
