// Package factory provides a small generic registry used to instantiate
// pluggable modules (drop-off schedulers, claim policies, metrics sinks,
// event stores) from configuration. A module is defined by a type string and
// a map of raw settings; factories decode the settings into typed structs and
// receive a build environment carrying the collaborators they may need.
//
// Example usage:
//
//	reg := factory.NewRegistry[io.Reader, struct{}]()
//	reg.Register("file", func(conf map[string]any, _ struct{}) (io.Reader, error) {
//	    var c struct{ Path string `json:"path"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return os.Open(c.Path)
//	})
//	r, err := reg.Create(factory.ModuleConfig{Type: "file", Conf: map[string]any{"path": "foo"}}, struct{}{})
package factory
