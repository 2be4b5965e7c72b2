// Package session builds and tears down the component graph for one
// loaded plug-in: factory inspection, class selection, instantiation,
// initialization, and the optional processor/controller/connection-point
// wiring, all behind a single Session that the protocol dispatcher
// drives.
package session

import (
	"fmt"

	"github.com/rack-audio/vst3host/pkg/abi"
	"github.com/rack-audio/vst3host/pkg/audio"
	"github.com/rack-audio/vst3host/pkg/editor"
	"github.com/rack-audio/vst3host/pkg/hosterr"
	"github.com/rack-audio/vst3host/pkg/loader"
	"github.com/rack-audio/vst3host/pkg/params"
	"go.uber.org/zap"
)

// Metadata is the class descriptor this host presents to the client on
// GetInfo, assembled with the IPluginFactory2 enrichment and vendor
// fallback described in SPEC_FULL.md §C.1-2.
type Metadata struct {
	CID           abi.UID
	Name          string
	Vendor        string
	Category      string
	SubCategories string
	Version       string
}

// Session owns every foreign-ABI object acquired while a plug-in is
// loaded, plus the Go-side engines layered over them. Teardown (Close)
// always runs in the exact reverse order of acquisition.
type Session struct {
	log *zap.Logger

	module    *loader.Module
	factory   abi.PluginFactory
	component abi.Component

	hasProcessor bool
	processor    abi.AudioProcessor

	hasController bool
	controller    abi.EditController

	componentConn abi.ConnectionPoint
	controllerConn abi.ConnectionPoint
	connected     bool

	Metadata Metadata
	Audio    *audio.Engine
	Params   *params.Controller
	Editor   *editor.Editor
}

// Load runs the full acquisition sequence described in SPEC_FULL.md §C:
// dynamic-link the bundle, select the first "Audio Module Class" the
// factory exposes, instantiate it, initialize it, and best-effort wire
// the optional processor/controller/connection-point interfaces.
func Load(log *zap.Logger, path string) (*Session, error) {
	log = log.Named("session")

	module, err := loader.Load(log, path)
	if err != nil {
		return nil, err
	}

	factory := module.Factory()

	meta, cid, err := selectAudioClass(factory)
	if err != nil {
		module.Unload()
		return nil, err
	}

	component, err := instantiateComponent(factory, cid)
	if err != nil {
		module.Unload()
		return nil, fmt.Errorf("%w: %v", hosterr.ErrLoad, err)
	}

	if err := component.Initialize(nil); err != nil {
		component.Release()
		module.Unload()
		return nil, fmt.Errorf("%w: component initialize: %v", hosterr.ErrLoad, err)
	}

	s := &Session{
		log:       log,
		module:    module,
		factory:   factory,
		component: component,
		Metadata:  meta,
	}

	s.processor, s.hasProcessor = component.AsAudioProcessor()
	s.Audio = audio.New(log, component, s.processor, s.hasProcessor)

	s.acquireController()
	if s.hasController {
		if p, err := params.New(s.controller); err == nil {
			s.Params = p
		} else {
			log.Warn("controller present but component-handler wiring failed", zap.Error(err))
		}
		s.wireConnectionPoints()
	}

	log.Info("session loaded",
		zap.String("name", meta.Name), zap.String("vendor", meta.Vendor),
		zap.Bool("hasProcessor", s.hasProcessor), zap.Bool("hasController", s.hasController))
	return s, nil
}

// selectAudioClass scans the factory's class catalogue for the first
// "Audio Module Class" entry and enriches it with IPluginFactory2 data
// when available, falling back to the factory's own vendor string when
// the per-class vendor is empty (SPEC_FULL.md §C.1-2).
func selectAudioClass(factory abi.PluginFactory) (Metadata, abi.UID, error) {
	factoryInfo, _ := factory.GetFactoryInfo()
	factory2, hasFactory2 := factory.AsFactory2()

	count := factory.CountClasses()
	for i := int32(0); i < count; i++ {
		info, err := factory.GetClassInfo(i)
		if err != nil {
			continue
		}
		if info.Category != abi.CategoryAudioModuleClass {
			continue
		}

		meta := Metadata{CID: info.CID, Name: info.Name, Category: info.Category}
		if hasFactory2 {
			if info2, err := factory2.GetClassInfo2(i); err == nil {
				meta.Vendor = info2.Vendor
				meta.SubCategories = info2.SubCategories
				meta.Version = info2.Version
			}
		}
		if meta.Vendor == "" {
			meta.Vendor = factoryInfo.Vendor
		}
		return meta, info.CID, nil
	}
	return Metadata{}, abi.UID{}, fmt.Errorf("%w: no Audio Module Class in factory", hosterr.ErrLoad)
}

// instantiateComponent creates the class instance and resolves it to
// IComponent. If the factory refuses to hand back IComponent directly,
// it falls back to requesting plain FUnknown and querying from there;
// if even that query fails, the raw object is treated as the component,
// since every "Audio Module Class" is contractually an IComponent and a
// plug-in that only partially implements queryInterface is still
// expected to answer to the calls IComponent itself defines.
func instantiateComponent(factory abi.PluginFactory, cid abi.UID) (abi.Component, error) {
	if obj, err := factory.CreateInstance(cid, abi.IIDComponent); err == nil {
		return abi.NewComponent(obj), nil
	}

	obj, err := factory.CreateInstance(cid, abi.IIDFUnknown)
	if err != nil {
		return abi.Component{}, fmt.Errorf("createInstance: %w", err)
	}
	unknown := abi.NewComponent(obj).Unknown
	if comp, err := unknown.QueryInterface(abi.IIDComponent); err == nil {
		unknown.Release()
		return abi.NewComponent(comp), nil
	}
	return abi.NewComponent(obj), nil
}

// acquireController tries, in order: (1) a distinct controller class
// named by getControllerClassId, instantiated from the same factory,
// then (2) querying the component itself for IEditController, for
// plug-ins that implement both interfaces on one object.
func (s *Session) acquireController() {
	var zero abi.UID
	if controllerCID, err := s.component.GetControllerClassID(); err == nil && controllerCID != zero {
		if obj, err := s.factory.CreateInstance(controllerCID, abi.IIDEditController); err == nil {
			s.controller = abi.NewEditController(obj)
			if err := s.controller.Initialize(nil); err == nil {
				s.hasController = true
				return
			}
			s.controller.Release()
		}
	}

	if obj, err := s.component.QueryInterface(abi.IIDEditController); err == nil {
		s.controller = abi.NewEditController(obj)
		s.hasController = true
	}
}

// wireConnectionPoints connects the component's and controller's
// IConnectionPoint interfaces to each other in both directions whenever
// both queries succeed. No check is made that the two are distinct
// objects.
func (s *Session) wireConnectionPoints() {
	compConn, compOK := s.component.AsConnectionPoint()
	ctrlConn, ctrlOK := s.controller.AsConnectionPoint()
	if !compOK || !ctrlOK {
		return
	}
	if err := compConn.Connect(ctrlConn); err != nil {
		s.log.Warn("component->controller connect failed", zap.Error(err))
		return
	}
	if err := ctrlConn.Connect(compConn); err != nil {
		s.log.Warn("controller->component connect failed", zap.Error(err))
		return
	}
	s.componentConn, s.controllerConn = compConn, ctrlConn
	s.connected = true
}

// OpenEditor creates and attaches the plug-in's editor view. It fails
// if there is no controller, or if one is already open.
func (s *Session) OpenEditor() error {
	if !s.hasController {
		return fmt.Errorf("%w: plug-in has no controller", hosterr.ErrInterfaceAbsent)
	}
	if s.Editor != nil {
		return fmt.Errorf("%w: editor already open", hosterr.ErrInvalidParam)
	}
	ed, err := editor.Open(s.log, s.controller)
	if err != nil {
		return err
	}
	s.Editor = ed
	return nil
}

// CloseEditor closes the editor if one is open. Idempotent.
func (s *Session) CloseEditor() error {
	if s.Editor == nil {
		return nil
	}
	err := s.Editor.Close()
	s.Editor = nil
	return err
}

// EditorSize reports the current editor window size. ok is false if no
// editor is open.
func (s *Session) EditorSize() (width, height int32, ok bool) {
	if s.Editor == nil {
		return 0, 0, false
	}
	w, h := s.Editor.Size()
	return w, h, true
}

// Close tears the session down in exact reverse acquisition order:
// editor, parameter handler, audio engine, connection points,
// controller, component, factory, module.
func (s *Session) Close() error {
	if s.Editor != nil {
		s.Editor.Close()
		s.Editor = nil
	}
	if s.Params != nil {
		s.Params.Close()
		s.Params = nil
	}
	if s.Audio != nil {
		s.Audio.Close()
	}
	if s.connected {
		s.componentConn.Disconnect(s.controllerConn)
		s.controllerConn.Disconnect(s.componentConn)
	}
	if s.hasController {
		s.controller.Terminate()
		s.controller.Release()
	}
	s.component.Terminate()
	s.component.Release()
	s.factory.Release()
	if err := s.module.Unload(); err != nil {
		return err
	}
	s.log.Info("session closed")
	return nil
}
