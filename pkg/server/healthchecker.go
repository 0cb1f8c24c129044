package server

import "context"

type HealthChecker interface {
	Healthy(ctx context.Context) bool
}

type OkHealthChecker struct {
}

func NewOkHealthChecker() *OkHealthChecker {
	return &OkHealthChecker{}
}

func (hc *OkHealthChecker) Healthy(ctx context.Context) bool {
	return true
}

// CompositeHealthChecker is healthy when every named check is.
type CompositeHealthChecker struct {
	names  []string
	checks []HealthChecker
}

func NewCompositeHealthChecker() *CompositeHealthChecker {
	return &CompositeHealthChecker{}
}

func (hc *CompositeHealthChecker) Add(name string, check HealthChecker) *CompositeHealthChecker {
	hc.names = append(hc.names, name)
	hc.checks = append(hc.checks, check)
	return hc
}

func (hc *CompositeHealthChecker) Healthy(ctx context.Context) bool {
	return len(hc.Failing(ctx)) == 0
}

// Failing returns the names of the checks that are not healthy. Failures of
// a nested composite are reported as "parent.child".
func (hc *CompositeHealthChecker) Failing(ctx context.Context) []string {
	var failing []string
	for i, check := range hc.checks {
		if nested, ok := check.(*CompositeHealthChecker); ok {
			for _, name := range nested.Failing(ctx) {
				failing = append(failing, hc.names[i]+"."+name)
			}
			continue
		}
		if !check.Healthy(ctx) {
			failing = append(failing, hc.names[i])
		}
	}
	return failing
}
