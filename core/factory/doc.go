// Package factory instantiates pluggable modules such as metrics sinks from
// configuration. A module is described by a type name and a map of raw
// settings which the registered factory decodes into its own struct.
//
//	reg := factory.NewRegistry[metrics.MetricsSink]()
//	_ = reg.Register("influx", func(conf map[string]any) (metrics.MetricsSink, error) {
//	    var c struct {
//	        URL    string `json:"url"`
//	        Bucket string `json:"bucket"`
//	    }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return newInfluxSink(c.URL, c.Bucket), nil
//	})
//	sink, err := reg.Create(factory.ModuleConfig{Type: "influx", Conf: raw})
package factory
