// Command scpi-demo drives the engine against a small in-memory
// instrument, either by running a script of program messages or by
// reading them interactively from stdin.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	scpi "github.com/scpi-go/scpi-rs"
	"github.com/scpi-go/scpi-rs/internal/demo"
)

var log = logrus.New()

func newEngine() *scpi.Engine {
	return scpi.NewEngine(demo.Tree(), "scpi-go", "demo-instrument", "0", "1.0")
}

func dispatchLine(engine *scpi.Engine, dev *demo.Instrument, line string) string {
	buf := make([]byte, 0, 4096)
	sink := scpi.NewFixedSink(buf)
	engine.Dispatch(dev, sink, []byte(line))
	return string(sink.Bytes())
}

func runScript(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	engine := newEngine()
	dev := demo.NewInstrument()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		log.WithField("message", line).Debug("dispatching")
		if out := dispatchLine(engine, dev, line+"\n"); out != "" {
			fmt.Print(out)
		}
	}
	return scanner.Err()
}

func runRepl() error {
	engine := newEngine()
	dev := demo.NewInstrument()
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("scpi-demo> type a program message, Ctrl-D to exit")
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		log.WithField("message", line).Debug("dispatching")
		if out := dispatchLine(engine, dev, line+"\n"); out != "" {
			fmt.Print(out)
		}
	}
	return scanner.Err()
}

func main() {
	root := &cobra.Command{
		Use:   "scpi-demo",
		Short: "Dispatch SCPI program messages against an in-memory demo instrument",
	}

	var verbose bool
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log each dispatched message")
	cobra.OnInitialize(func() {
		if verbose {
			log.SetLevel(logrus.DebugLevel)
		}
	})

	runCmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Dispatch each line of a script file as one program message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScript(args[0])
		},
	}

	replCmd := &cobra.Command{
		Use:   "repl",
		Short: "Read program messages from stdin interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl()
		},
	}

	root.AddCommand(runCmd, replCmd)
	if err := root.Execute(); err != nil {
		log.WithError(err).Fatal("scpi-demo failed")
	}
}
