package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/temirov/treeson/internal/cli"
	"github.com/temirov/treeson/internal/utils"
)

const (
	// interruptExitCode is the process exit code after a user interrupt.
	interruptExitCode = 130
	// operationCancelledMessage is printed when the user interrupts the run.
	operationCancelledMessage = "operation cancelled"
	// loggerInitializationFailedFormat reports a logger construction failure.
	loggerInitializationFailedFormat = "logger initialization failed: %w"
)

// main is the entry point for the treeson command.
func main() {
	loggerInstance, loggerInitializationError := utils.NewApplicationLogger()
	if loggerInitializationError != nil {
		panic(fmt.Errorf(loggerInitializationFailedFormat, loggerInitializationError))
	}
	defer loggerInstance.Sync()

	interruptSignals := make(chan os.Signal, 1)
	signal.Notify(interruptSignals, os.Interrupt)
	go func() {
		<-interruptSignals
		fmt.Fprintln(os.Stderr, operationCancelledMessage)
		os.Exit(interruptExitCode)
	}()

	if applicationExecutionError := cli.Execute(context.Background(), loggerInstance); applicationExecutionError != nil {
		loggerInstance.Fatal(applicationExecutionError.Error())
	}
}
