package pricing

import (
	"fmt"
	"math"
	"time"
)

// ProcessSelection references a process on a task, either inline (new shape)
// or by catalog ID (legacy shape), with a billed quantity.
type ProcessSelection struct {
	Process   *Process `json:"process,omitempty"`
	ProcessID string   `json:"processId,omitempty"`
	Quantity  float64  `json:"quantity"`
}

// MaterialSelection references a material on a task, inline or by ID.
type MaterialSelection struct {
	Material   *Material `json:"material,omitempty"`
	MaterialID string    `json:"materialId,omitempty"`
	Quantity   float64   `json:"quantity"`
}

// Task is the unit of work priced for a repair: a set of process selections
// and a set of standalone material selections.
type Task struct {
	Name      string              `json:"name,omitempty"`
	Processes []ProcessSelection  `json:"processes,omitempty"`
	Materials []MaterialSelection `json:"materials,omitempty"`
}

// Catalog supplies the available records that legacy ID-shaped selections
// resolve against.
type Catalog struct {
	Processes []Process
	Materials []Material
}

func (c Catalog) processByID(id string) *Process {
	for i := range c.Processes {
		if c.Processes[i].ID == id {
			return &c.Processes[i]
		}
	}
	return nil
}

func (c Catalog) materialByID(id string) *Material {
	for i := range c.Materials {
		if c.Materials[i].ID == id {
			return &c.Materials[i]
		}
	}
	return nil
}

// TaskCost is the aggregate cost breakdown for a task.
type TaskCost struct {
	LaborCost          float64   `json:"laborCost"`
	BaseMaterialsCost  float64   `json:"baseMaterialsCost"`
	MaterialsCost      float64   `json:"materialsCost"` // legacy marked-up view
	TotalBaseCost      float64   `json:"totalBaseCost"`
	BusinessMultiplier float64   `json:"businessMultiplier"`
	MaterialMarkup     float64   `json:"materialMarkup"`
	RetailPrice        float64   `json:"retailPrice"`
	WholesalePrice     float64   `json:"wholesalePrice"`
	CalculatedAt       time.Time `json:"calculatedAt"`
}

// CalculateTaskCost prices a whole task against normalized settings.
//
// Each process selection contributes its weighted labor and weighted base
// materials cost times the selection quantity; metal-dependent processes
// contribute their labor-only summary, since only a caller that knows the
// task's chosen metal can commit to a variant. The business multiplier is
// applied once to the total base cost, and the material markup increment is
// layered on the materials portion only. Calling this twice with identical
// inputs yields identical numbers; timestamps aside, there is no hidden
// state.
func CalculateTaskCost(task *Task, cat Catalog, s Settings) (*TaskCost, error) {
	if task == nil {
		return nil, newTypeError("task", "must be an object")
	}

	var weightedLabor, weightedMaterials float64
	for i := range task.Processes {
		sel := &task.Processes[i]
		field := fmt.Sprintf("processes[%d]", i)

		proc, err := resolveProcess(sel, cat, field)
		if err != nil {
			return nil, err
		}
		qty, err := selectionQuantity(sel.Quantity, field)
		if err != nil {
			return nil, err
		}

		wl, wm, err := processComponents(proc, s)
		if err != nil {
			return nil, prefixField(err, field)
		}
		weightedLabor += wl * qty
		weightedMaterials += wm * qty
	}

	var materialBase float64
	for i := range task.Materials {
		sel := &task.Materials[i]
		field := fmt.Sprintf("materials[%d]", i)

		mat, err := resolveMaterial(sel, cat, field)
		if err != nil {
			return nil, err
		}
		qty, err := selectionQuantity(sel.Quantity, field)
		if err != nil {
			return nil, err
		}

		raw, err := MaterialRawCost(mat)
		if err != nil {
			return nil, prefixField(err, field)
		}
		materialBase += raw * qty
	}

	materialsPortion := weightedMaterials + materialBase
	totalBase := weightedLabor + materialsPortion
	markup := s.ResolvedMaterialMarkup()
	business := s.BusinessMultiplier()
	retail := totalBase*business + materialsPortion*(markup-1)

	wholesale, err := deriveWholesale(retail, totalBase, s)
	if err != nil {
		return nil, err
	}

	return &TaskCost{
		LaborCost:          RoundCents(weightedLabor),
		BaseMaterialsCost:  RoundCents(materialsPortion),
		MaterialsCost:      RoundCents(materialsPortion * markup),
		TotalBaseCost:      RoundCents(totalBase),
		BusinessMultiplier: business,
		MaterialMarkup:     markup,
		RetailPrice:        RoundCents(retail),
		WholesalePrice:     RoundCents(wholesale),
		CalculatedAt:       time.Now().UTC(),
	}, nil
}

func resolveProcess(sel *ProcessSelection, cat Catalog, field string) (*Process, error) {
	if sel.Process != nil {
		return sel.Process, nil
	}
	if sel.ProcessID == "" {
		return nil, newTypeError(field, "must reference a process, inline or by id")
	}
	proc := cat.processByID(sel.ProcessID)
	if proc == nil {
		return nil, newTypeError(field, "unknown process id %q", sel.ProcessID)
	}
	return proc, nil
}

func resolveMaterial(sel *MaterialSelection, cat Catalog, field string) (*Material, error) {
	if sel.Material != nil {
		return sel.Material, nil
	}
	if sel.MaterialID == "" {
		return nil, newTypeError(field, "must reference a material, inline or by id")
	}
	mat := cat.materialByID(sel.MaterialID)
	if mat == nil {
		return nil, newTypeError(field, "unknown material id %q", sel.MaterialID)
	}
	return mat, nil
}

func selectionQuantity(qty float64, field string) (float64, error) {
	if math.IsNaN(qty) || math.IsInf(qty, 0) {
		return 0, newTypeError(field+".quantity", "must be numeric")
	}
	if qty <= 0 {
		return 0, newRangeError(field+".quantity", "must be positive, got %v", qty)
	}
	return qty, nil
}

// processComponents computes a process's unrounded weighted labor and
// weighted base-materials contributions. Metal-dependent processes yield
// their labor-only preview.
func processComponents(p *Process, s Settings) (weightedLabor, weightedMaterials float64, err error) {
	if p == nil {
		return 0, 0, newTypeError("process", "must be an object")
	}

	var hours float64
	if p.LaborHours != nil {
		hours = *p.LaborHours
	}
	if math.IsNaN(hours) || math.IsInf(hours, 0) {
		return 0, 0, newTypeError("laborHours", "must be numeric")
	}
	if hours < 0 {
		return 0, 0, newRangeError("laborHours", "must not be negative, got %v", hours)
	}
	laborRaw := hours * HourlyRate(p.SkillLevel, s)

	if p.IsMetalDependent() {
		return laborRaw, 0, nil
	}

	complexity := 1.0
	if p.MetalType != "" {
		complexity = s.metalComplexityFor(p.MetalType)
	}
	base, err := sumMaterialBase(p.Materials, false)
	if err != nil {
		return 0, 0, err
	}
	return laborRaw * complexity, base * complexity, nil
}
