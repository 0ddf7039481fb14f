package catalog

import (
	"go.trai.ch/estatedesk/internal/core/domain"
	"go.trai.ch/estatedesk/internal/engine/derive"
	"go.trai.ch/estatedesk/internal/engine/listctl"
	"go.trai.ch/estatedesk/internal/engine/lookup"
)

// Resources of the backend.
var (
	Propiedades  = domain.Resource{Name: "propiedades", Path: "/propiedades/", PrimaryKey: "id_propiedad"}
	Propietarios = domain.Resource{Name: "propietarios", Path: "/propietarios", PrimaryKey: "ci_propietario"}
	Clientes     = domain.Resource{Name: "clientes", Path: "/clientes", PrimaryKey: "ci_cliente"}
	Empleados    = domain.Resource{Name: "empleados", Path: "/empleados", PrimaryKey: "ci_empleado"}
	Usuarios     = domain.Resource{Name: "usuarios", Path: "/usuarios", PrimaryKey: "id_usuario"}
	Roles        = domain.Resource{Name: "roles", Path: "/roles", PrimaryKey: "id_rol"}
	Citas        = domain.Resource{Name: "citas", Path: "/citas-visita", PrimaryKey: "id_cita"}
	Contratos    = domain.Resource{Name: "contratos", Path: "/contratos", PrimaryKey: "id_contrato_operacion"}
	Pagos        = domain.Resource{Name: "pagos", Path: "/pagos", PrimaryKey: "id_pago"}
	Documentos   = domain.Resource{Name: "documentos", Path: "/documentos-propiedad/", PrimaryKey: "id_documento"}
)

var (
	estadosPropiedad = []string{"Captada", "Publicada", "Reservada", "Cerrada"}
	operaciones      = []string{"Venta", "Alquiler", "Anticrético"}
	estadosCita      = []string{"Programada", "Realizada", "Cancelada", "Reprogramada"}
	estadosContrato  = []string{"Borrador", "Activo", "Finalizado", "Cancelado"}
	tiposContrato    = []string{"Venta", "Alquiler", "Anticrético", "Traspaso"}
	estadosPago      = []string{"Pendiente", "Pagado", "Atrasado", "Cancelado"}
	origenesCliente  = []string{"Referido", "Redes Sociales", "Sitio Web", "Llamada Directa", "Oficina", "Otro"}
)

func count(name string, where ...derive.Condition) derive.Stat {
	return derive.Stat{Name: name, Where: where}
}

func is(field string, values ...string) derive.Condition {
	return derive.Condition{Ref: derive.Direct(field), In: values}
}

func isNot(field string, values ...string) derive.Condition {
	return derive.Condition{Ref: derive.Direct(field), In: values, Not: true}
}

func activeStats(field string) []derive.Stat {
	return []derive.Stat{
		count("total"),
		count("activos", is(field, "true")),
		count("inactivos", isNot(field, "true")),
	}
}

// Default returns the catalog of every view the console offers.
func Default() *Catalog {
	return New(
		propiedades(),
		propietarios(),
		clientes(),
		empleados(),
		usuarios(),
		citas(),
		contratos(),
		pagos(),
		documentos(),
	)
}

func propiedades() View {
	owner := derive.Joined("propietarios", "ci_propietario", "nombres_completo_propietario", "apellidos_completo_propietario").Or("Desconocido")
	return View{
		Title: "Propiedades",
		Config: listctl.Config{
			Name:     "propiedades",
			Primary:  Propiedades,
			Lookups:  []lookup.Source{{Name: "propietarios", Resource: Propietarios}},
			PageSize: 30,
			Messages: listctl.Messages{
				Singular: "la propiedad",
				Plural:   "las propiedades",
				Conflict: "No se puede eliminar la propiedad: tiene registros asociados",
			},
			Rules: derive.Rules{
				Search: []derive.FieldRef{
					derive.Direct("titulo_propiedad"),
					derive.Direct("codigo_publico_propiedad"),
					derive.Direct("descripcion_propiedad"),
					owner.Searchable(),
				},
				Filters: []derive.Filter{
					{Name: "tipo", Label: "Tipo de operación", Ref: derive.Direct("tipo_operacion_propiedad"), Options: operaciones},
					{Name: "estado", Label: "Estado", Ref: derive.Direct("estado_propiedad"), Options: estadosPropiedad},
				},
				Stats: []derive.Stat{
					count("total"),
					count("publicadas", is("estado_propiedad", "Publicada")),
					count("venta", is("tipo_operacion_propiedad", "Venta")),
					count("alquiler", is("tipo_operacion_propiedad", "Alquiler")),
				},
			},
		},
		Columns: []Column{
			{Header: "Código", Ref: derive.Direct("codigo_publico_propiedad")},
			{Header: "Título", Ref: derive.Direct("titulo_propiedad")},
			{Header: "Propietario", Ref: owner},
			{Header: "Operación", Ref: derive.Direct("tipo_operacion_propiedad")},
			{Header: "Estado", Ref: derive.Direct("estado_propiedad")},
			{Header: "Precio", Ref: derive.Direct("precio_publicado_propiedad"), Format: Money},
			{Header: "Superficie", Ref: derive.Direct("superficie_propiedad")},
		},
	}
}

func propietarios() View {
	return View{
		Title: "Propietarios",
		Config: listctl.Config{
			Name:     "propietarios",
			Primary:  Propietarios,
			PageSize: 30,
			Messages: listctl.Messages{
				Singular: "el propietario",
				Plural:   "los propietarios",
				Conflict: "No se puede eliminar el propietario: tiene propiedades asociadas",
			},
			Rules: derive.Rules{
				Search: []derive.FieldRef{
					derive.Direct("ci_propietario"),
					derive.Direct("nombres_completo_propietario"),
					derive.Direct("apellidos_completo_propietario"),
					derive.Direct("correo_electronico_propietario"),
				},
				Stats: activeStats("es_activo_propietario"),
			},
		},
		Columns: []Column{
			{Header: "CI", Ref: derive.Direct("ci_propietario")},
			{Header: "Nombre", Ref: derive.Direct("nombres_completo_propietario", "apellidos_completo_propietario")},
			{Header: "Correo", Ref: derive.Direct("correo_electronico_propietario")},
			{Header: "Teléfono", Ref: derive.Direct("telefono_propietario")},
			{Header: "Estado", Ref: derive.Direct("es_activo_propietario"), Format: Active},
		},
	}
}

func clientes() View {
	return View{
		Title: "Clientes",
		Config: listctl.Config{
			Name:     "clientes",
			Primary:  Clientes,
			PageSize: 30,
			Messages: listctl.Messages{Singular: "el cliente", Plural: "los clientes"},
			Rules: derive.Rules{
				Search: []derive.FieldRef{
					derive.Direct("ci_cliente"),
					derive.Direct("nombres_completo_cliente"),
					derive.Direct("correo_electronico_cliente"),
					derive.Direct("telefono_cliente"),
				},
				Filters: []derive.Filter{
					{Name: "origen", Label: "Origen", Ref: derive.Direct("origen_cliente"), Options: origenesCliente},
					{Name: "zona", Label: "Zona de preferencia", Ref: derive.Direct("preferencia_zona_cliente"), Match: derive.MatchContains},
				},
				Stats: []derive.Stat{count("total")},
			},
		},
		Columns: []Column{
			{Header: "CI", Ref: derive.Direct("ci_cliente")},
			{Header: "Nombre", Ref: derive.Direct("nombres_completo_cliente", "apellidos_completo_cliente")},
			{Header: "Correo", Ref: derive.Direct("correo_electronico_cliente")},
			{Header: "Teléfono", Ref: derive.Direct("telefono_cliente")},
			{Header: "Origen", Ref: derive.Direct("origen_cliente")},
			{Header: "Zona", Ref: derive.Direct("preferencia_zona_cliente")},
		},
	}
}

func empleados() View {
	return View{
		Title: "Empleados",
		Config: listctl.Config{
			Name:     "empleados",
			Primary:  Empleados,
			PageSize: 30,
			Messages: listctl.Messages{Singular: "el empleado", Plural: "los empleados"},
			Rules: derive.Rules{
				Search: []derive.FieldRef{
					derive.Direct("ci_empleado"),
					derive.Direct("nombres_completo_empleado"),
					derive.Direct("apellidos_completo_empleado"),
					derive.Direct("correo_electronico_empleado"),
				},
				Stats: activeStats("es_activo_empleado"),
			},
		},
		Columns: []Column{
			{Header: "CI", Ref: derive.Direct("ci_empleado")},
			{Header: "Nombre", Ref: derive.Direct("nombres_completo_empleado", "apellidos_completo_empleado")},
			{Header: "Correo", Ref: derive.Direct("correo_electronico_empleado")},
			{Header: "Teléfono", Ref: derive.Direct("telefono_empleado")},
			{Header: "Estado", Ref: derive.Direct("es_activo_empleado"), Format: Active},
		},
	}
}

func usuarios() View {
	role := derive.Joined("roles", "id_rol", "nombre_rol").Or("Sin rol")
	return View{
		Title: "Usuarios",
		Config: listctl.Config{
			Name:     "usuarios",
			Primary:  Usuarios,
			Lookups:  []lookup.Source{{Name: "roles", Resource: Roles}},
			PageSize: 30,
			Messages: listctl.Messages{
				Singular: "el usuario",
				Plural:   "los usuarios",
				Conflict: "No se puede eliminar el usuario: tiene citas o contratos asociados",
			},
			Rules: derive.Rules{
				Search: []derive.FieldRef{
					derive.Direct("ci_empleado"),
					derive.Direct("nombre_usuario"),
				},
				Stats: activeStats("es_activo_usuario"),
			},
		},
		Columns: []Column{
			{Header: "Usuario", Ref: derive.Direct("nombre_usuario")},
			{Header: "CI empleado", Ref: derive.Direct("ci_empleado")},
			{Header: "Rol", Ref: role},
			{Header: "Estado", Ref: derive.Direct("es_activo_usuario"), Format: Active},
		},
	}
}

func citas() View {
	property := derive.Joined("propiedades", "id_propiedad", "titulo_propiedad").Or("N/A")
	client := derive.Joined("clientes", "ci_cliente", "nombres_completo_cliente", "apellidos_completo_cliente").Or("N/A")
	advisor := derive.Joined("usuarios", "id_usuario_asesor", "nombre_usuario").Or("Sin asignar")
	return View{
		Title: "Citas de visita",
		Config: listctl.Config{
			Name:    "citas",
			Primary: Citas,
			Lookups: []lookup.Source{
				{Name: "propiedades", Resource: Propiedades},
				{Name: "clientes", Resource: Clientes},
				{Name: "usuarios", Resource: Usuarios},
			},
			PageSize: 20,
			Messages: listctl.Messages{Singular: "la cita", Plural: "las citas"},
			Rules: derive.Rules{
				Search: []derive.FieldRef{property, client, advisor, derive.Direct("lugar_encuentro_cita")},
				Filters: []derive.Filter{
					{Name: "estado", Label: "Estado", Remote: true, Param: "estado", Options: estadosCita},
				},
				Sort: []derive.Sort{{Field: "fecha_visita_cita", Kind: derive.ByTime, Descending: true}},
				Stats: []derive.Stat{
					count("total"),
					count("programadas", is("estado_cita", "Programada")),
					count("realizadas", is("estado_cita", "Realizada")),
					count("canceladas", is("estado_cita", "Cancelada")),
				},
			},
		},
		Columns: []Column{
			{Header: "Fecha", Ref: derive.Direct("fecha_visita_cita"), Format: DateTime},
			{Header: "Propiedad", Ref: property},
			{Header: "Cliente", Ref: client},
			{Header: "Asesor", Ref: advisor},
			{Header: "Lugar", Ref: derive.Direct("lugar_encuentro_cita")},
			{Header: "Estado", Ref: derive.Direct("estado_cita")},
		},
	}
}

func contratos() View {
	property := derive.Joined("propiedades", "id_propiedad", "titulo_propiedad").Or("N/A")
	client := derive.Joined("clientes", "ci_cliente", "nombres_completo_cliente", "apellidos_completo_cliente").Or("N/A")
	agent := derive.Joined("usuarios", "id_usuario_colocador", "nombre_usuario").Or("N/A")
	return View{
		Title: "Contratos",
		Config: listctl.Config{
			Name:    "contratos",
			Primary: Contratos,
			Lookups: []lookup.Source{
				{Name: "propiedades", Resource: Propiedades},
				{Name: "clientes", Resource: Clientes},
				{Name: "usuarios", Resource: Usuarios},
			},
			PageSize: 20,
			Messages: listctl.Messages{Singular: "el contrato", Plural: "los contratos"},
			Rules: derive.Rules{
				Search: []derive.FieldRef{
					property, client, agent,
					derive.Direct("tipo_operacion_contrato"),
					derive.Direct("estado_contrato"),
				},
				Filters: []derive.Filter{
					{Name: "estado", Label: "Estado", Remote: true, Param: "estado", Options: estadosContrato},
					{Name: "tipo", Label: "Tipo de operación", Remote: true, Param: "tipo_operacion", Options: tiposContrato},
				},
				Stats: []derive.Stat{
					count("total"),
					count("activos", is("estado_contrato", "Activo")),
					count("finalizados", is("estado_contrato", "Finalizado")),
					count("borradores", is("estado_contrato", "Borrador")),
				},
			},
		},
		Columns: []Column{
			{Header: "Inicio", Ref: derive.Direct("fecha_inicio_contrato"), Format: Date},
			{Header: "Propiedad", Ref: property},
			{Header: "Cliente", Ref: client},
			{Header: "Colocador", Ref: agent},
			{Header: "Tipo", Ref: derive.Direct("tipo_operacion_contrato")},
			{Header: "Estado", Ref: derive.Direct("estado_contrato")},
			{Header: "Precio de cierre", Ref: derive.Direct("precio_cierre_contrato"), Format: Money},
		},
	}
}

func pagos() View {
	contract := derive.Joined("contratos", "id_contrato_operacion", "tipo_operacion_contrato").Or("N/A")
	return View{
		Title: "Pagos",
		Config: listctl.Config{
			Name:     "pagos",
			Primary:  Pagos,
			Lookups:  []lookup.Source{{Name: "contratos", Resource: Contratos}},
			PageSize: 20,
			Messages: listctl.Messages{Singular: "el pago", Plural: "los pagos"},
			Rules: derive.Rules{
				Search: []derive.FieldRef{
					contract,
					derive.Direct("monto_pago"),
					derive.Direct("numero_cuota_pago"),
				},
				Filters: []derive.Filter{
					{Name: "estado", Label: "Estado", Ref: derive.Direct("estado_pago"), Options: estadosPago},
				},
				Sort: []derive.Sort{
					{Field: "fecha_pago", Kind: derive.ByTime, Descending: true},
					{Field: "numero_cuota_pago", Kind: derive.ByNumber},
				},
				Stats: []derive.Stat{
					count("total"),
					count("pagados", is("estado_pago", "Pagado")),
					count("pendientes", is("estado_pago", "Pendiente")),
					count("atrasados", is("estado_pago", "Atrasado")),
					{Name: "monto pagado", Sum: "monto_pago", Where: []derive.Condition{is("estado_pago", "Pagado")}},
					{Name: "monto pendiente", Sum: "monto_pago", Where: []derive.Condition{isNot("estado_pago", "Pagado", "Cancelado")}},
				},
			},
		},
		Columns: []Column{
			{Header: "Fecha", Ref: derive.Direct("fecha_pago"), Format: Date},
			{Header: "Contrato", Ref: contract},
			{Header: "Cuota", Ref: derive.Direct("numero_cuota_pago")},
			{Header: "Monto", Ref: derive.Direct("monto_pago"), Format: Money},
			{Header: "Estado", Ref: derive.Direct("estado_pago")},
		},
	}
}

func documentos() View {
	return View{
		Title:   "Documentos de propiedad",
		Uploads: true,
		Config: listctl.Config{
			Name:     "documentos",
			Primary:  Documentos,
			PageSize: 20,
			Messages: listctl.Messages{Singular: "el documento", Plural: "los documentos"},
			Rules: derive.Rules{
				Search: []derive.FieldRef{
					derive.Direct("tipo_documento"),
					derive.Direct("nombre_archivo_original"),
					derive.Direct("observaciones_documento"),
				},
				Filters: []derive.Filter{
					{Name: "propiedad", Label: "Propiedad", Remote: true, Param: "id_propiedad"},
				},
				Stats: []derive.Stat{count("total")},
			},
		},
		Columns: []Column{
			{Header: "Subido", Ref: derive.Direct("fecha_subida_documento"), Format: Date},
			{Header: "Propiedad", Ref: derive.Direct("id_propiedad")},
			{Header: "Tipo", Ref: derive.Direct("tipo_documento")},
			{Header: "Archivo", Ref: derive.Direct("nombre_archivo_original")},
			{Header: "Observaciones", Ref: derive.Direct("observaciones_documento")},
		},
	}
}
