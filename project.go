package rvdata

import (
	"fmt"
	"os"
	"path/filepath"
)

// Project is a whole game project: the Database and the script bundle,
// both stored under <dir>/Data.
type Project struct {
	Database *Database
	Scripts  *ScriptSet

	config Config
}

// NewProject creates an empty project.
func NewProject(config Config) *Project {
	config = config.withDefaults()
	return &Project{
		Database: NewDatabase(config),
		Scripts:  &ScriptSet{},
		config:   config,
	}
}

// LoadProject reads dir/Data.
func LoadProject(dir string, config Config) (*Project, error) {
	config = config.withDefaults()
	data := filepath.Join(dir, DataDir)

	db, err := LoadDatabase(data, config)
	if err != nil {
		return nil, err
	}
	scripts, err := LoadScripts(scriptsPath(config, data))
	if err != nil {
		return nil, err
	}
	return &Project{Database: db, Scripts: scripts, config: config}, nil
}

// Save writes the project into dir/Data, creating the directory if needed.
func (p *Project) Save(dir string) error {
	data := filepath.Join(dir, DataDir)
	if err := os.MkdirAll(data, 0o755); err != nil {
		return err
	}
	if err := p.Database.Save(data); err != nil {
		return err
	}
	if err := p.Scripts.Save(scriptsPath(p.config, data), p.config); err != nil {
		return fmt.Errorf("save scripts: %w", err)
	}
	return nil
}

// ScriptsPath returns where the script bundle lives for a project in dir.
func (p *Project) ScriptsPath(dir string) string {
	return scriptsPath(p.config, filepath.Join(dir, DataDir))
}

func scriptsPath(config Config, data string) string {
	return filepath.Join(data, config.Schema.FileName(config.Schema.Scripts))
}
