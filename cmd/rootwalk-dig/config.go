package main

import (
	"time"
)

type config struct {
	help    bool
	short   bool
	trace   bool
	version bool

	configFile     string
	maxSends       int
	requestTimeout time.Duration
}
