package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/BertoldVdb/DualshockResearch/dualshock"
	"github.com/BertoldVdb/DualshockResearch/padserver/padclient"
	"github.com/BertoldVdb/DualshockResearch/pid"
	"github.com/BertoldVdb/DualshockResearch/tasker"
)

// pollInto replaces st only when poll succeeds, so a failed poll does not
// read as a centered-left stick.
func pollInto(st *dualshock.State, poll func() (dualshock.State, error)) error {
	next, err := poll()
	if err != nil {
		return err
	}
	*st = next
	return nil
}

/* Moves a simulated axis to the position of the left stick */
func main() {
	destination := flag.String("destination", "", "Skip discovery and use this server")
	name := flag.String("name", "", "Only use the server advertised with this name")
	pGain := flag.Float64("p", 0.5, "Proportional gain")
	iGain := flag.Float64("i", 0.05, "Integral gain")
	dGain := flag.Float64("d", 0.1, "Derivative gain")

	flag.Parse()

	var client *padclient.PadClient
	var err error

	if *destination != "" {
		client, err = padclient.New(*destination)
	} else {
		log.Println("Searching for pad server")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err = padclient.NewDiscovered(ctx, *name)
		cancel()
	}
	if err != nil {
		log.Fatalln("Failed to connect:", err)
	}
	defer client.Close()

	if client.IsDigital() {
		log.Println("Pad is in digital mode, switching to analog")
		if err := client.SetMode(true, client.IsLocked()); err != nil {
			log.Fatalln("Failed to set mode:", err)
		}
	}

	ctrl := pid.New(*pGain, *iGain, *dGain)
	var st dualshock.State
	var position float64

	manager := tasker.New(&tasker.Task{
		Name:   "poll",
		Period: 20 * time.Millisecond,
		Run: func() {
			if err := pollInto(&st, client.Poll); err != nil {
				log.Println("Poll failed:", err)
			}
		},
	}, &tasker.Task{
		Name:   "control",
		Period: 10 * time.Millisecond,
		Run: func() {
			target := (float64(st.LeftX()) - 128) / 128
			ctrl.Update(target - position)
			position += ctrl.Output() * 0.1
		},
	}, &tasker.Task{
		Name:   "report",
		Period: 500 * time.Millisecond,
		Run: func() {
			log.Printf("stick=%3d position=%+.3f P=%+.3f I=%+.3f D=%+.3f",
				st.LeftX(), position, ctrl.P(), ctrl.I(), ctrl.D())
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	closeChan := make(chan os.Signal, 1)
	signal.Notify(closeChan, os.Interrupt)
	go func() {
		<-closeChan
		cancel()
	}()

	manager.Run(ctx, time.Millisecond)
}
