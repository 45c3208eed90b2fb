package config

// ExtractConfig contains extract configurations.
type ExtractConfig struct {
	// Directory is the output directory; relative paths are resolved against the directory of the .ustar file.
	Directory string
	// NoClobber fails extraction instead of overwriting an existing file.
	NoClobber bool
	// Progress shows a progress bar.
	Progress bool
	// KeepModTime applies the archived modification times.
	KeepModTime bool
	// Verbose lists member names while extracting.
	Verbose bool
}

// ForExtract returns configuration for extract from the [extract] section.
func (l *Loader) ForExtract() ExtractConfig {
	sec := l.file().Section("extract")

	return ExtractConfig{
		Directory:   l.resolve(sec.Key("directory").String()),
		NoClobber:   sec.Key("no-clobber").MustBool(false),
		Progress:    sec.Key("progress").MustBool(false),
		KeepModTime: sec.Key("keep-mod-time").MustBool(true),
		Verbose:     sec.Key("verbose").MustBool(false),
	}
}

// ForExtract calls Loader.ForExtract on the DefaultLoader instance.
func ForExtract() ExtractConfig {
	return DefaultLoader.ForExtract()
}
