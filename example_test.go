package trafficcast_test

import (
	"fmt"
	"time"

	trafficcast "github.com/aouyang1/go-trafficcast"
	"github.com/aouyang1/go-trafficcast/baseline"
)

const exampleBaseline = `{
  "winter": {
    "dayOfWeekTimeSlots": {
      "Wednesday": {
        "09:45": {"averageCount": 4, "sampleSize": {"days": 8}},
        "10:00": {"averageCount": 6, "sampleSize": {"days": 8}},
        "10:15": {"averageCount": 5, "sampleSize": {"days": 8}}
      }
    }
  },
  "dstDatesByYear": {
    "2024": {"start": "2024-03-10", "end": "2024-11-03"}
  }
}`

func ExampleProject() {
	tbl, err := baseline.Decode([]byte(exampleBaseline))
	if err != nil {
		panic(err)
	}
	in := trafficcast.Input{
		Clock:    tbl.Clock("KSFO", -8*time.Hour),
		Baseline: tbl,
	}

	// 10:00 local on 2024-11-27
	now := time.Date(2024, 11, 27, 18, 0, 0, 0, time.UTC)
	res := trafficcast.Project(in, now, now, nil)
	for _, pt := range res.Points {
		fmt.Printf("%s %+.2f %v\n", pt.Label, pt.HoursFromNow, *pt.BaselineCount)
	}
	fmt.Println("now:", *res.Now.Value)
	// Output:
	// 09:45 -0.25 4
	// 10:00 +0.00 6
	// 10:15 +0.25 5
	// now: 6
}
