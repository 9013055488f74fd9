// Package tracker accumulates running means of training quantities such as
// losses, registers them per epoch and writes the history to log.csv.
//
//	history := tracker.New(outDir)
//	for epoch, t := range tracker.Epochs(10, nil) {
//	    for b, err := range p.All(ctx) {
//	        ...
//	        t.Update(map[string]float64{"loss": loss})
//	        history.Update(map[string]float64{"loss": loss})
//	    }
//	    if err := history.RegisterMeans(epoch); err != nil {
//	        return err
//	    }
//	}
package tracker
