package iscsi

import (
	"github.com/cuemby/iscsigw/pkg/events"
	"github.com/cuemby/iscsigw/pkg/mon"
	"github.com/cuemby/iscsigw/pkg/types"
)

type fakeSpecStore struct {
	specs map[string]*types.ServiceSpec
	err   error
}

func newFakeSpecStore(specs ...*types.ServiceSpec) *fakeSpecStore {
	f := &fakeSpecStore{specs: make(map[string]*types.ServiceSpec)}
	for _, spec := range specs {
		f.specs[spec.ServiceName()] = spec
	}
	return f
}

func (f *fakeSpecStore) Get(name string) (*types.ServiceSpec, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.specs[name], nil
}

func (f *fakeSpecStore) All() (map[string]*types.ServiceSpec, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.specs, nil
}

func (f *fakeSpecStore) Save(spec *types.ServiceSpec) error {
	f.specs[spec.ServiceName()] = spec
	return nil
}

type fakeCommander struct {
	requests []types.CommandRequest
	outputs  map[string]string
	errs     map[string]error
}

func newFakeCommander() *fakeCommander {
	return &fakeCommander{outputs: make(map[string]string), errs: make(map[string]error)}
}

func (f *fakeCommander) CheckMonCommand(req types.CommandRequest) (string, error) {
	f.requests = append(f.requests, req)
	if err := f.errs[req.Prefix]; err != nil {
		return "", err
	}
	if out, ok := f.outputs[req.Prefix]; ok {
		return out, nil
	}
	if req.Prefix == mon.PrefixAuthGetOrCreate {
		return "[" + req.Entity + "]\n\tkey = AQBtestkey==\n", nil
	}
	return "", nil
}

func (f *fakeCommander) byPrefix(prefix string) []types.CommandRequest {
	var out []types.CommandRequest
	for _, r := range f.requests {
		if r.Prefix == prefix {
			out = append(out, r)
		}
	}
	return out
}

type fakeRenderer struct {
	name string
	ctx  map[string]any
	err  error
}

func (f *fakeRenderer) Render(name string, ctx map[string]any) (string, error) {
	f.name = name
	f.ctx = ctx
	if f.err != nil {
		return "", f.err
	}
	return "[config]\ncluster_client_name = " + ctx["client_name"].(string) + "\n", nil
}

type staticResolver map[string]string

func (r staticResolver) ResolveIP(hostname string) string {
	if ip, ok := r[hostname]; ok {
		return ip
	}
	return hostname
}

type testEnv struct {
	svc      *Service
	specs    *fakeSpecStore
	mon      *fakeCommander
	renderer *fakeRenderer
	recorder *events.Recorder
}

func newTestEnv(specs ...*types.ServiceSpec) *testEnv {
	env := &testEnv{
		specs:    newFakeSpecStore(specs...),
		mon:      newFakeCommander(),
		renderer: &fakeRenderer{},
		recorder: &events.Recorder{},
	}
	env.svc = NewService(Options{
		Specs:     env.specs,
		Commander: env.mon,
		Renderer:  env.renderer,
		Generator: fakeGenerator{},
		Resolver:  staticResolver{"host-a": "10.0.0.1", "host-b": "10.0.0.2", "host-c": "10.0.0.3", "host-v6": "fd00::10"},
		Observer:  env.recorder,
	})
	return env
}

type fakeGenerator struct{}

func (fakeGenerator) Generate(d *types.DaemonDeployment) (map[string]any, []string, error) {
	return map[string]any{"keyring": d.Keyring, "files": d.ExtraFiles}, []string{"spec:" + d.Spec.ServiceName()}, nil
}

func iscsiSpec(id string) *types.ServiceSpec {
	return &types.ServiceSpec{ServiceType: TYPE, ServiceID: id, Pool: "rbd"}
}
