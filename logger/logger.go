package logger

import (
	"io"
	"log"
	"os"
)

// New returns the kernel log. An empty path logs to stdout, anything else is
// opened for append.
func New(path string) *log.Logger {
	if len(path) == 0 {
		return log.New(os.Stdout, "RTOS ", log.Ldate|log.Ltime|log.Lshortfile)
	} else {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0666)
		if err != nil {
			log.Fatal(err)
		}
		l := log.New(f, "RTOS ", log.Ldate|log.Ltime|log.Lshortfile)
		l.Printf("Initializing %s", path)
		return l
	}
}

// Discard returns a logger that drops everything, for tests and the gui
// when no log file was given.
func Discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}
