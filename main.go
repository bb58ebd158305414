package main

import "whisper-audio-service/cmd"

func main() {
	cmd.Execute()
}
