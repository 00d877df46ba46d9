package client

import (
	"fmt"
	"io"
	"text/tabwriter"

	api "github.com/oshokin/catpoint/internal/api/grpc/security"
	domain "github.com/oshokin/catpoint/internal/domain/security"
)

// PrintSnapshot writes statuses followed by the sensor table.
func PrintSnapshot(out io.Writer, snapshot *api.Snapshot) error {
	cat := "no"
	if snapshot.CatDetected {
		cat = "yes"
	}

	_, err := fmt.Fprintf(out, "alarm:  %s\narming: %s\ncat:    %s\n\n",
		snapshot.Status.AlarmStatus, snapshot.Status.ArmingStatus, cat)
	if err != nil {
		return err
	}

	return printSensors(out, snapshot.Status.Sensors)
}

func printSensors(out io.Writer, sensors []*domain.Sensor) error {
	if len(sensors) == 0 {
		_, err := fmt.Fprintln(out, "no sensors")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tTYPE\tACTIVE")

	for _, sensor := range sensors {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", sensor.ID, sensor.Name, sensor.Type, sensor.Active)
	}

	return w.Flush()
}
