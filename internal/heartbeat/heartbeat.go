// Package heartbeat periodically pings a public server directory so the
// server can be discovered by players, on the schedule and URL shape
// described in the collaborator contract.
package heartbeat

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/robfig/cron/v3"

	"github.com/Technochips/chipscraft/internal/logging"
)

// Beater supplies the server state one heartbeat GET reports. Server
// implements this with an accessor that copies the client count, salt and
// config fields under its lock and releases it before the GET is made.
type Beater interface {
	HeartbeatInfo() Info
}

// Info is the snapshot of server state a single heartbeat needs.
type Info struct {
	Port      string
	MaxUsers  int
	Name      string
	Public    bool
	Salt      string
	UserCount int
}

// Scheduler runs a Beater's heartbeat every 45 seconds against address,
// from Start until Stop.
type Scheduler struct {
	address string
	beater  Beater
	log     *logging.Logger
	client  *http.Client
	cron    *cron.Cron
}

// New creates a Scheduler posting to address.
func New(address string, beater Beater, log *logging.Logger) *Scheduler {
	return &Scheduler{
		address: address,
		beater:  beater,
		log:     log,
		client:  &http.Client{},
		cron:    cron.New(),
	}
}

// Start schedules the heartbeat and begins running it in the background.
// It fires once immediately so discovery doesn't wait 45 seconds after
// boot.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@every 45s", s.beat); err != nil {
		return fmt.Errorf("heartbeat: schedule: %w", err)
	}
	s.cron.Start()
	go s.beat()
	return nil
}

// Stop halts the schedule, waiting for any in-flight beat to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) beat() {
	info := s.beater.HeartbeatInfo()

	q := url.Values{}
	q.Set("port", info.Port)
	q.Set("max", strconv.Itoa(info.MaxUsers))
	q.Set("name", info.Name)
	if info.Public {
		q.Set("public", "True")
	} else {
		q.Set("public", "False")
	}
	q.Set("version", "7")
	q.Set("salt", info.Salt)
	q.Set("users", strconv.Itoa(info.UserCount))
	q.Set("software", "chipscraft")

	resp, err := s.client.Get(s.address + "?" + q.Encode())
	if err != nil {
		s.log.Warn("heartbeat request failed: %v", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		s.log.Warn("heartbeat request returned status %d", resp.StatusCode)
	}
}
