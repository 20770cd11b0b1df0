// internal/writer/builder.go
package writer

import (
	"time"

	cfg "github.com/tamzrod/bk1785/internal/config"
	wmodbus "github.com/tamzrod/bk1785/internal/writer/modbus"
)

// BuildPlan converts the monitor config into a Writer Plan.
// Assumes config has already passed Validate and Normalize.
// name is used only when the config does not override it.
func BuildPlan(m cfg.MonitorConfig, name string) Plan {
	plan := Plan{DeviceName: name}
	if m.DeviceName != "" {
		plan.DeviceName = m.DeviceName
	}

	for _, t := range m.Targets {
		plan.Targets = append(plan.Targets, Target{
			Endpoint:    t.Endpoint,
			UnitID:      t.UnitID,
			BaseAddress: t.BaseAddress,
			Timeout:     time.Duration(t.TimeoutMs) * time.Millisecond,
		})
	}

	return plan
}

// BuildEndpointClients creates one TCP client per unique endpoint.
// Targets sharing an endpoint share the connection; the longest timeout wins.
func BuildEndpointClients(plan Plan) (map[string]*wmodbus.EndpointClient, func() error, error) {
	timeouts := map[string]time.Duration{}
	var order []string
	for _, t := range plan.Targets {
		cur, seen := timeouts[t.Endpoint]
		if !seen {
			order = append(order, t.Endpoint)
		}
		if !seen || t.Timeout > cur {
			timeouts[t.Endpoint] = t.Timeout
		}
	}

	clients := make(map[string]*wmodbus.EndpointClient, len(order))
	var closers []func() error

	for _, endpoint := range order {
		c, err := wmodbus.NewEndpointClient(wmodbus.Config{
			Endpoint: endpoint,
			Timeout:  timeouts[endpoint],
		})
		if err != nil {
			for _, fn := range closers {
				_ = fn()
			}
			return nil, nil, err
		}
		clients[endpoint] = c
		closers = append(closers, c.Close)
	}

	closeAll := func() error {
		var last error
		for _, fn := range closers {
			if err := fn(); err != nil {
				last = err
			}
		}
		return last
	}

	return clients, closeAll, nil
}
