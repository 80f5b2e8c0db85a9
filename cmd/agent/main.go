// Command agent is the on-device attendance tool: it reconciles the
// current status from the backend and the local cache, and submits
// check-ins and check-outs with geofence data attached.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"absensi/internal/client"
	"absensi/internal/domain/shift"
	"absensi/internal/geo"
	"absensi/internal/platform/logger"
)

func main() {
	var (
		serverURL = flag.String("server", "http://localhost:8080", "backend base URL")
		email     = flag.String("email", "", "account email")
		password  = flag.String("password", "", "account password")
		token     = flag.String("token", "", "bearer token (skips login)")
		statePath = flag.String("state", defaultStatePath(), "local state file")
		action    = flag.String("action", "status", "status, checkin or checkout")
		lat       = flag.Float64("lat", 0, "latitude")
		lon       = flag.Float64("lon", 0, "longitude")
		accuracy  = flag.Float64("accuracy", 0, "reported GPS accuracy in meters")
		mocked    = flag.Bool("mocked", false, "mark the position as simulated")
		deviceID  = flag.String("device", "cli-agent", "device identifier")
		photoURL  = flag.String("photo", "", "verified photo URL (required for checkin)")
		notes     = flag.String("notes", "", "notes to attach")
		overtime  = flag.Bool("overtime", false, "count this check-out as overtime")
		assumeYes = flag.Bool("yes", false, "answer overtime prompt with yes")
		timezone  = flag.String("tz", "Asia/Jakarta", "local timezone")
	)
	flag.Parse()

	log := logger.New("info", "development")
	defer func() { _ = log.Sync() }()

	loc, err := time.LoadLocation(*timezone)
	if err != nil {
		fatalf("invalid timezone %q: %v", *timezone, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	api := client.NewAPI(*serverURL)
	switch {
	case *token != "":
		api.Token = *token
	case *email != "":
		if err := api.Login(ctx, *email, *password); err != nil {
			fatalf("login failed: %v", err)
		}
	default:
		fatalf("either -token or -email/-password is required")
	}

	cache := client.NewStatusCache(client.NewFileStore(*statePath))
	now := time.Now().In(loc)

	res := reconcile(ctx, api, cache, now)
	printStatus(res, loc)

	switch *action {
	case "status":
		return
	case "checkin", "checkout":
	default:
		fatalf("unknown action %q", *action)
	}

	sub := client.Submission{
		Sample: geo.Sample{
			Point:      geo.Point{Latitude: *lat, Longitude: *lon},
			Simulated:  *mocked,
			Accuracy:   *accuracy,
			CapturedAt: now,
		},
		PhotoVerified: *photoURL != "",
		DeviceID:      *deviceID,
		PhotoURL:      *photoURL,
		Notes:         *notes,
		IsOvertime:    *overtime,
	}

	act := client.ActionCheckIn
	if *action == "checkout" {
		act = client.ActionCheckOut
		confirmed, reason := resolveOvertime(ctx, api, sub, now, *overtime, *assumeYes)
		sub.IsOvertime = confirmed
		if reason != "" {
			if sub.Notes != "" {
				sub.Notes += "; "
			}
			sub.Notes += "Overtime: " + reason
		}
	}
	sub.OvertimeResolved = true

	submitter := client.NewSubmitter(api, cache, log)
	result, err := submitter.Submit(ctx, act, sub)
	if err != nil {
		var oor *client.OutOfRangeError
		if errors.As(err, &oor) {
			fatalf("rejected: %dm from the branch (allowed %.0fm)", oor.DistanceMeters, oor.MaxRadiusMeters)
		}
		fatalf("%v", err)
	}

	switch result.Outcome {
	case client.OutcomeRecovered:
		fmt.Printf("already recorded; local state now %s\n", result.State)
	default:
		fmt.Printf("recorded %s at %s\n", result.State, result.At.In(loc).Format("15:04"))
		if result.Ack != nil && result.Ack.Warning != "" {
			fmt.Println("warning:", result.Ack.Warning)
		}
	}
}

// reconcile pulls the three sources concurrently; any source that
// fails is treated as absent rather than aborting.
func reconcile(ctx context.Context, api *client.API, cache *client.StatusCache, now time.Time) client.Resolution {
	type fetched struct {
		status  *client.ServerStatus
		history []client.Record
	}
	ch := make(chan fetched, 1)
	go func() {
		var f fetched
		f.status, _ = api.Status(ctx)
		history, _ := api.History(ctx, 31)
		calendar, _ := api.Calendar(ctx, 0, 0)
		f.history = mergeRecords(history, calendar)
		ch <- f
	}()

	cached, err := cache.Load()
	if err != nil {
		cached = nil
	}
	f := <-ch
	return client.Reconcile(f.status, f.history, cached, now)
}

// mergeRecords combines history and calendar rows, preferring the
// richer history entry when both cover a date.
func mergeRecords(history, calendar []client.Record) []client.Record {
	seen := make(map[string]bool, len(history))
	out := make([]client.Record, 0, len(history)+len(calendar))
	for _, rec := range history {
		seen[rec.Date] = true
		out = append(out, rec)
	}
	for _, rec := range calendar {
		if !seen[rec.Date] {
			out = append(out, rec)
		}
	}
	return out
}

// resolveOvertime applies the late check-out gate: past the overtime
// threshold after the nearest branch's closing hour, the user must
// decide whether the excess counts as overtime, and give a reason
// when it does. Declining proceeds as a plain check-out.
func resolveOvertime(ctx context.Context, api *client.API, sub client.Submission, now time.Time, flagged, assumeYes bool) (bool, string) {
	if flagged {
		return true, ""
	}

	sites, err := api.Branches(ctx)
	if err != nil || len(sites) == 0 {
		// Shift lookup failures degrade to a normal check-out rather
		// than blocking the user.
		return false, ""
	}
	nearest := sites[0]
	best := geo.Distance(sub.Sample.Point, geo.Point{Latitude: nearest.Latitude, Longitude: nearest.Longitude})
	for _, site := range sites[1:] {
		d := geo.Distance(sub.Sample.Point, geo.Point{Latitude: site.Latitude, Longitude: site.Longitude})
		if d < best {
			best, nearest = d, site
		}
	}

	if !shift.NeedsOvertimeConfirmation(now, nearest.EndHour, shift.DefaultOvertimeGateHours) {
		return false, ""
	}
	if assumeYes {
		return true, ""
	}

	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("Checked out well past %s closing (%s). Count as overtime? [y/N] ", nearest.Name, nearest.EndHour)
	answer, _ := reader.ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	if answer != "y" && answer != "yes" {
		return false, ""
	}

	fmt.Print("Reason: ")
	reason, _ := reader.ReadString('\n')
	return true, strings.TrimSpace(reason)
}

func printStatus(res client.Resolution, loc *time.Location) {
	fmt.Println("status:", res.State)
	if res.RelevantTime != nil {
		fmt.Println("since: ", res.RelevantTime.In(loc).Format("2006-01-02 15:04"))
	}
	if res.Display != nil {
		line := res.Display.Date
		if res.Display.CheckInTime != "" {
			line += "  in " + res.Display.CheckInTime
		}
		if res.Display.CheckOutTime != "" {
			line += "  out " + res.Display.CheckOutTime
		}
		if res.Display.IsLate {
			line += "  (late)"
		}
		fmt.Println("today: ", line)
	}
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "attendance-state.json"
	}
	return home + "/.attendance/state.json"
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
