// UD HPC conventions plugin: normalizes submitted jobs to the site's
// GridEngine-era conventions and guards job modification.
package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/University-of-Delaware-IT-RCI/ud-slurm-addons/api"
	"github.com/University-of-Delaware-IT-RCI/ud-slurm-addons/internal/config"
	"github.com/University-of-Delaware-IT-RCI/ud-slurm-addons/internal/jobsubmit"
	"github.com/University-of-Delaware-IT-RCI/ud-slurm-addons/internal/util"
)

// Compile-time check to ensure UdhpcPlugin implements api.Plugin
var _ api.Plugin = &UdhpcPlugin{}

// The host calls the plugin's methods thru this variable
var PluginInstance = UdhpcPlugin{}

// Plugin internal config
type pluginConfig struct {
	PolicyConfigPath string `yaml:"PolicyConfigPath"`
	LogLevel         string `yaml:"LogLevel"`
	LogPath          string `yaml:"LogPath"`
}

type UdhpcPlugin struct {
	pluginConfig
	pipeline *jobsubmit.Pipeline
}

func (p *UdhpcPlugin) Name() string {
	return "Udhpc"
}

func (p *UdhpcPlugin) Version() string {
	return "v1.1.0"
}

func (p *UdhpcPlugin) Load(meta api.PluginMeta) error {
	if meta.Config != "" {
		content, err := os.ReadFile(meta.Config)
		if err != nil {
			return err
		}
		if err := yaml.Unmarshal(content, &p.pluginConfig); err != nil {
			return err
		}
	}
	util.InitFileLogger(util.ParseLogLevel(p.LogLevel), p.LogPath)

	site, err := config.Load(p.PolicyConfigPath)
	if err != nil {
		return err
	}
	p.pipeline = jobsubmit.NewPipeline(site, jobsubmit.NewOSGroupResolver())

	log.Infof("UD HPC conventions plugin loaded.")
	log.Tracef("Metadata: %+v", meta)
	return nil
}

func (p *UdhpcPlugin) Unload(meta api.PluginMeta) error {
	log.Infof("UD HPC conventions plugin unloaded.")
	return nil
}

func (p *UdhpcPlugin) SubmitHook(ctx *api.PluginContext) {
	req, ok := ctx.Request().(*api.SubmitRequest)
	if !ok {
		log.Errorln("Invalid request type, expected SubmitRequest.")
		return
	}
	if err := p.pipeline.Submit(req.Job, req.SubmitUID); err != nil {
		ctx.Reject(err)
	}
}

func (p *UdhpcPlugin) ModifyHook(ctx *api.PluginContext) {
	req, ok := ctx.Request().(*api.ModifyRequest)
	if !ok {
		log.Errorln("Invalid request type, expected ModifyRequest.")
		return
	}
	if err := p.pipeline.Modify(req.Incoming, req.Stored, req.SubmitUID); err != nil {
		ctx.Reject(err)
	}
}

func main() {
	log.Fatal("This is a plugin, should not be executed directly.\n" +
		"Please build it as a shared object (.so) and load it with the plugin host.")
}
