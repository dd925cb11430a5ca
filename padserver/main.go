package main

import (
	"context"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/BertoldVdb/DualshockResearch/dualshock/padopen"
	"github.com/BertoldVdb/DualshockResearch/padnet"
	"github.com/BertoldVdb/DualshockResearch/padserver/api"
	"github.com/BertoldVdb/DualshockResearch/tasker"
	"github.com/BertoldVdb/go-misc/httplog"
)

func main() {
	padPath := flag.String("pad", "platform", "Pad to open, e.g. 'platform:GPIO4:GPIO6:GPIO7:GPIO5' or 'usb:<serial>'")
	apiKey := flag.String("apikey", "", "API key to use")
	address := flag.String("addr", ":8067", "Address to listen on")
	analog := flag.Bool("analog", false, "Put the pad in analog mode")
	lock := flag.Bool("lock", true, "Lock the pad mode")
	interval := flag.Duration("interval", 16*time.Millisecond, "Poll interval")
	serialPort := flag.String("serial", "", "Serial port to print the state on, '-' for stdout")
	baud := flag.Int("baud", 9600, "Serial port baud rate")
	consoleInterval := flag.Duration("console", time.Second, "Interval between state lines on the serial port")
	iface := flag.String("iface", "", "Interface to advertise on, empty for all")
	name := flag.String("name", "dualshock", "Name to advertise with zeroconf, empty to disable")
	verbose := flag.Bool("verbose", false, "Enable verbose logging")

	flag.Parse()

	if *apiKey != "" {
		expiry := time.Now().AddDate(10, 0, 0)
		for _, scope := range []string{scopeRead, scopeWrite} {
			user, pass := authCalculate(*apiKey, scope, expiry)
			log.Printf("Password for username '%s' (%s): %s", user, scope, pass)
		}
	}

	closeChan := make(chan os.Signal, 1)
	signal.Notify(closeChan, os.Interrupt)

	logOut := log.Printf
	if !*verbose {
		logOut = nil
	}

	log.Printf("Initializing pad '%s':", *padPath)
	pad, err := padopen.OpenPad(*padPath, logOut)
	if err != nil {
		log.Printf(" -> Failed to open: %v", err)
		return
	}
	defer pad.Close()

	if err := pad.SetMode(*analog, *lock); err != nil {
		log.Printf(" -> Failed to set mode: %v", err)
		return
	}
	log.Printf(" -> Pad ready, digital=%v locked=%v", pad.IsDigital(), pad.IsLocked())

	tasks := []*tasker.Task{{
		Name:   "poll",
		Period: *interval,
		Run: func() {
			if err := pad.Poll(); err != nil {
				log.Println("Poll failed:", err)
			}
		},
	}}

	if *serialPort != "" {
		console, err := openConsole(*serialPort, *baud)
		if err != nil {
			log.Println(err)
			return
		}
		defer console.Close()

		tasks = append(tasks, &tasker.Task{
			Name:   "console",
			Period: *consoleInterval,
			Run: func() {
				if err := writeState(console, pad.State()); err != nil {
					log.Println("Console write failed:", err)
				}
			},
		})
	}

	/* Tick well below the poll interval so the tasks keep their period */
	tick := *interval / 4
	if tick < time.Millisecond {
		tick = time.Millisecond
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go tasker.New(tasks...).Run(ctx, tick)

	padAPI := api.New(pad)

	if *name != "" {
		_, portStr, err := net.SplitHostPort(*address)
		if err != nil {
			log.Println(err)
			return
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			log.Println(err)
			return
		}

		discovery := padnet.NewServerDiscovery(*name, port)
		status := pad.Status()
		discovery.SetMode(status.IsDigital, status.IsLocked)
		if err := discovery.Start(*iface, 30*time.Second); err != nil {
			log.Println("Failed to advertise:", err)
			return
		}
		defer discovery.Stop()
		log.Printf("Advertising '%s' on %s", *name, discovery.CurrentAddress())

		padAPI.ModeChanged = discovery.SetMode
	}

	logger := httplog.HTTPLog{
		LogOut:     log.Printf,
		ServerName: "Dualshock",
	}

	server := &http.Server{
		Addr:    *address,
		Handler: logger.GetHandler(authProcess(padAPI.ServeHTTP, *apiKey)),

		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       30 * time.Second,
		ReadHeaderTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("Starting server on: http://%s", *address)
		log.Println("Server stopped:", server.ListenAndServe())

		select {
		case closeChan <- nil:
		default:
		}
	}()

	<-closeChan
	cancel()

	ctx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	server.Shutdown(ctx)
	cancelShutdown()
}
