package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"AssistantHubPlatform/services/cli-service/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cmd.Main(ctx)
	stop()
	os.Exit(code)
}
