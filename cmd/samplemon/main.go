package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/robotalks/sampleslot/pkg/msgs"
	"github.com/robotalks/sampleslot/pkg/report/mqtt"
)

var (
	mqttURL        = "mqtt://localhost:1883/sampleslot/"
	connectTimeout = 10 * time.Second
)

func init() {
	if val := os.Getenv("SAMPLESLOT_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.DurationVar(&connectTimeout, "connect-timeout", connectTimeout, "MQTT connect timeout.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	q.Sub(mqtt.MetaTopic("+"), func(topic string, payload []byte) {
		log.Printf("%s: %s", topic, string(payload))
	})
	q.Sub(mqtt.SampleTopic("+"), func(topic string, payload []byte) {
		msg, err := msgs.DecodeSample(payload)
		if err != nil {
			log.Printf("%s: bad message: %v", topic, err)
			return
		}
		log.Printf("%s: #%d %s at %s (session %s)", topic,
			msg.Seq, msg.Value(), msg.Time().Format(time.RFC3339Nano), msg.Session)
	})
	if err := q.ConnectWait(connectTimeout); err != nil {
		log.Fatalln(err)
	}
	<-(chan struct{})(nil)
}
