package video

// Observer receives export notifications. Implementations only consume them;
// the export driver never stores what it emits.
type Observer interface {
	SegmentStarted(index int, filename string)
	Progress(done, total int)
	Completed()
	Error(message string)
}

// NopObserver discards every notification
type NopObserver struct{}

func (NopObserver) SegmentStarted(int, string) {}
func (NopObserver) Progress(int, int)          {}
func (NopObserver) Completed()                 {}
func (NopObserver) Error(string)               {}

// Observers fans notifications out to several observers in order
type Observers []Observer

func (o Observers) SegmentStarted(index int, filename string) {
	for _, obs := range o {
		obs.SegmentStarted(index, filename)
	}
}

func (o Observers) Progress(done, total int) {
	for _, obs := range o {
		obs.Progress(done, total)
	}
}

func (o Observers) Completed() {
	for _, obs := range o {
		obs.Completed()
	}
}

func (o Observers) Error(message string) {
	for _, obs := range o {
		obs.Error(message)
	}
}

var (
	_ Observer = NopObserver{}
	_ Observer = Observers(nil)
)
