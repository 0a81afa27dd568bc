package repository

// Factory describes access to different domain repositories.
type Factory interface {
	Options() OptionRepository
	Transients() TransientRepository
	Tasks() TaskScheduler
	BlockEvents() BlockEventRepository
}
