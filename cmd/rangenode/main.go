// Command rangenode reads an HC-SR04 ultrasonic sensor and publishes distance
// measurements and a 1 Hz heartbeat onto a CAN bus, with an optional MQTT
// telemetry mirror and HTTP status page.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/bluecorn/raspberry-can-HC-SR04/internal/can"
	"github.com/bluecorn/raspberry-can-HC-SR04/internal/cyphal"
	"github.com/bluecorn/raspberry-can-HC-SR04/internal/gpio"
	"github.com/bluecorn/raspberry-can-HC-SR04/internal/mqtt"
	"github.com/bluecorn/raspberry-can-HC-SR04/internal/node"
	"github.com/bluecorn/raspberry-can-HC-SR04/internal/ranging"
	"github.com/bluecorn/raspberry-can-HC-SR04/internal/status"
	"github.com/bluecorn/raspberry-can-HC-SR04/internal/web"
)

// maxNodeID is the largest node-ID the bus protocol permits.
const maxNodeID = 127

func usage() {
	prog := os.Args[0]
	fmt.Fprintf(os.Stderr, "Usage:   %s [flags] <can-interface> <node-id>\n", prog)
	fmt.Fprintf(os.Stderr, "Example: %s vcan0 42\n", prog)
	flag.PrintDefaults()
}

func main() {
	period := flag.Duration("period", 50*time.Millisecond, "Trigger pulse interval")
	triggerPin := flag.Int("trigger-pin", gpio.DefaultTriggerPin, "BCM pin number for the trigger output")
	echoPin := flag.Int("echo-pin", gpio.DefaultEchoPin, "BCM pin number for the echo input")
	queueCap := flag.Int("queue-cap", cyphal.DefaultQueueCapacity, "Transmit queue capacity in frames")
	broker := flag.String("broker", "", "MQTT broker address for the telemetry mirror (empty to disable)")
	mirrorHeartbeat := flag.Duration("mqtt-heartbeat", 15*time.Minute, "MQTT mirror heartbeat interval (0 to disable)")
	httpAddr := flag.String("http", ":8080", "HTTP status address (empty to disable)")
	printDistance := flag.Bool("print-distance", false, "Take one measurement, print it and exit")

	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) != 2 {
		usage()
		os.Exit(1)
	}

	nodeID, err := strconv.Atoi(args[1])
	if err != nil || nodeID < 0 || nodeID > maxNodeID {
		fmt.Fprintf(os.Stderr, "invalid node-id %q: must be an integer in [0, %d]\n", args[1], maxNodeID)
		os.Exit(1)
	}

	if err := run(args[0], nodeID, *period, *triggerPin, *echoPin, *queueCap, *broker, *mirrorHeartbeat, *httpAddr, *printDistance); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(iface string, nodeID int, period time.Duration, triggerPin, echoPin, queueCap int, broker string, mirrorHeartbeat time.Duration, httpAddr string, printDistance bool) error {
	// Initialize GPIO
	sensor, err := gpio.NewRealSensor(triggerPin, echoPin)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer sensor.Close()

	// One-shot measurement mode
	if printDistance {
		return printOneDistance(sensor)
	}

	// Initialize the CAN socket
	bus, err := can.NewRealBus(iface)
	if err != nil {
		return fmt.Errorf("open CAN interface %s: %w", iface, err)
	}
	defer bus.Close()

	queue := cyphal.NewTxQueue(uint8(nodeID), queueCap)

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		Iface:           iface,
		NodeID:          nodeID,
		TriggerPin:      triggerPin,
		EchoPin:         echoPin,
		TriggerPeriodMs: period.Milliseconds(),
		QueueCapacity:   queueCap,
		Broker:          broker,
		HTTPAddr:        httpAddr,
	})

	// Initialize the optional MQTT mirror
	var mirror mqtt.Publisher
	var mirrorStatus mqtt.ConnectionStatus
	if broker != "" {
		rp := mqtt.NewRealPublisher(broker)
		defer rp.Close()
		mirror = rp
		mirrorStatus = rp

		snap := tracker.Snapshot()
		startupEvent := mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
		}
		if err := mirror.PublishSystem(startupEvent); err != nil {
			log.Printf("failed to publish startup event: %v", err)
		} else {
			log.Printf("published startup event")
		}
	}

	// Start HTTP status server
	if httpAddr != "" {
		srv := web.New(httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", httpAddr)
	}

	log.Printf("started: iface=%s node-id=%d period=%v pins=trig:%d/echo:%d", iface, nodeID, period, triggerPin, echoPin)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(sensor, bus, queue, mirror, mirrorStatus, tracker, mirrorHeartbeat, time.Now, ticker.C, sigCh)
}

func runLoop(sensor gpio.Sensor, bus can.Bus, queue *cyphal.TxQueue, mirror mqtt.Publisher, mirrorStatus mqtt.ConnectionStatus, tracker *status.Tracker, mirrorHeartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	start := now()
	var sm ranging.StateMachine
	pub := node.NewPublisher(queue, start)

	var sendDrops uint64
	lastMirrorHeartbeat := start

	handleEdge := func(e ranging.Edge) {
		m, ok := sm.OnEdge(e)
		if !ok {
			return
		}
		t := now()
		if err := pub.PublishDistance(m); err != nil {
			log.Printf("distance publish dropped: %v", err)
		}
		if tracker != nil {
			tracker.SetSample(m.DistanceCm, m.Tick, t)
		}
		if mirror != nil {
			if err := mirror.Publish(mqtt.Sample{Timestamp: t, DistanceCm: m.DistanceCm, Tick: m.Tick}); err != nil {
				log.Printf("mirror publish error: %v", err)
			}
		}
	}

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}

			// Edges already delivered by the hardware are completed
			// measurements; publish them before the final flush instead
			// of dropping them.
		flush:
			for {
				select {
				case e := <-sensor.Edges():
					handleEdge(e)
				default:
					break flush
				}
			}

			res := node.Drain(queue, bus)
			sendDrops += uint64(res.Dropped)
			if tracker != nil {
				tracker.Update(pub.Stats(), sendDrops, sensor.Dropped(), sm.Discarded(), queue.Len())
			}

			if mirror != nil {
				event := mqtt.SystemEvent{
					Timestamp: now(),
					Event:     "SHUTDOWN",
					Reason:    signalName,
					Retained:  true,
				}
				if tracker != nil {
					event.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", signalName)
				}
				if err := mirror.PublishSystem(event); err != nil {
					log.Printf("failed to publish shutdown event: %v", err)
				} else {
					log.Printf("published shutdown event")
				}
			}
			return nil

		case <-tick:
			if err := sensor.Trigger(); err != nil {
				log.Printf("trigger error: %v", err)
				// Keep running: heartbeats must continue even if ranging is dead.
			}

		case e := <-sensor.Edges():
			handleEdge(e)
		}

		t := now()
		if _, err := pub.CheckHeartbeat(t); err != nil {
			log.Printf("heartbeat dropped: %v", err)
		}

		if mirror != nil && mirrorHeartbeat > 0 && t.Sub(lastMirrorHeartbeat) >= mirrorHeartbeat {
			lastMirrorHeartbeat = t
			event := mqtt.SystemEvent{Timestamp: t, Event: "HEARTBEAT"}
			if tracker != nil {
				event.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "HEARTBEAT", "")
			}
			if err := mirror.PublishSystem(event); err != nil {
				log.Printf("mirror heartbeat error: %v", err)
			}
		}

		res := node.Drain(queue, bus)
		sendDrops += uint64(res.Dropped)

		if tracker != nil {
			tracker.Update(pub.Stats(), sendDrops, sensor.Dropped(), sm.Discarded(), queue.Len())
			if mirrorStatus != nil {
				tracker.SetMQTTConnected(mirrorStatus.IsConnected())
			}
		}
	}
}

// printOneDistance triggers a single measurement and prints it.
func printOneDistance(sensor gpio.Sensor) error {
	var sm ranging.StateMachine

	if err := sensor.Trigger(); err != nil {
		return fmt.Errorf("trigger: %w", err)
	}

	timeout := time.After(time.Second)
	for {
		select {
		case e := <-sensor.Edges():
			if m, ok := sm.OnEdge(e); ok {
				fmt.Printf("%.2f cm\n", m.DistanceCm)
				return nil
			}
		case <-timeout:
			return fmt.Errorf("no echo within 1s (sensor disconnected?)")
		}
	}
}
