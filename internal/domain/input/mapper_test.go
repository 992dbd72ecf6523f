package input

import (
	"testing"

	"github.com/okian/qte/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMapper(t *testing.T) {
	Convey("Given a mapper without contexts", t, func() {
		m := NewMapper()

		Convey("Actions resolve to nothing", func() {
			So(m.ResolveActionToKeys("interact"), ShouldBeEmpty)
			So(m.Contexts(), ShouldBeEmpty)
		})

		Convey("A nil mapper behaves the same", func() {
			var nilMapper *Mapper
			So(nilMapper.ResolveActionToKeys("interact"), ShouldBeEmpty)
			So(nilMapper.Contexts(), ShouldBeNil)
		})

		Convey("When two contexts bind the same action", func() {
			gameplay := NewMappingContext("gameplay").Bind("interact", "e", "f")
			vehicle := NewMappingContext("vehicle").Bind("interact", "f", "g")
			m.AddContext(gameplay, 0)
			m.AddContext(vehicle, 5)

			Convey("The keys are unioned with higher priority first", func() {
				So(m.ResolveActionToKeys("interact"), ShouldResemble, []model.Key{"f", "g", "e"})
				So(m.Contexts(), ShouldResemble, []string{"vehicle", "gameplay"})
			})

			Convey("Removing a context drops its keys", func() {
				So(m.RemoveContext("vehicle"), ShouldBeTrue)
				So(m.RemoveContext("vehicle"), ShouldBeFalse)
				So(m.ResolveActionToKeys("interact"), ShouldResemble, []model.Key{"e", "f"})
			})

			Convey("Re-adding a context by name replaces it", func() {
				m.AddContext(NewMappingContext("vehicle").Bind("interact", "h"), -1)
				So(m.ResolveActionToKeys("interact"), ShouldResemble, []model.Key{"e", "f", "h"})
			})

			Convey("A nil context is not added", func() {
				m.AddContext(nil, 100)
				So(m.Contexts(), ShouldResemble, []string{"vehicle", "gameplay"})
			})
		})
	})

	Convey("Contexts are built from config bindings", t, func() {
		c := FromBindings("default", map[string][]string{
			"Interact": {"E", " f ", ""},
			"jump":     {"space", "space"},
		})
		So(c.Name(), ShouldEqual, "default")
		So(c.Keys("interact"), ShouldResemble, []model.Key{"e", "f"})
		So(c.Keys("jump"), ShouldResemble, []model.Key{"space"})
		So(c.Actions(), ShouldResemble, []model.Action{"interact", "jump"})

		c.Unbind("jump")
		So(c.Keys("jump"), ShouldBeEmpty)
	})
}
